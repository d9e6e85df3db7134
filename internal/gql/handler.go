package gql

import (
	"context"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
)

// NewHandlers parses the schema against the resolver and returns the
// POST handler and the websocket subscription handler, both with the
// bearer credential threaded into the resolver context.
func NewHandlers(r *Resolver) (post http.Handler, ws http.Handler, err error) {
	parsed, err := graphql.ParseSchema(Schema, r, graphql.UseFieldResolvers())
	if err != nil {
		return nil, nil, err
	}

	relayHandler := withToken(&relay.Handler{Schema: parsed})

	wsHandler := graphqlws.NewHandlerFunc(parsed, relayHandler,
		graphqlws.WithContextGenerator(graphqlws.ContextGeneratorFunc(
			func(ctx context.Context, req *http.Request) (context.Context, error) {
				return WithToken(ctx, bearerToken(req)), nil
			})))

	return relayHandler, wsHandler, nil
}

// withToken copies the credential from the request into the context the
// executor hands to resolvers.
func withToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(WithToken(req.Context(), bearerToken(req))))
	})
}

func bearerToken(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return req.URL.Query().Get("token")
}
