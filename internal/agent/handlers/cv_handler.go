package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/husainf4l/rolekits/pkg/client"
)

// CVHandler exposes CV tools to the LLM agent. Every write goes through
// the REST client, so agent edits take the service's merge+publish path
// and live subscribers observe them like any human edit.
type CVHandler struct {
	client *client.Client
}

func NewCVHandler(c *client.Client) *CVHandler {
	return &CVHandler{client: c}
}

// RegisterTools registers the CV tools on the MCP server.
func (h *CVHandler) RegisterTools(s *server.MCPServer) error {
	getTool := mcp.NewTool("get_cv",
		mcp.WithDescription("Fetch the current CV data. Use before answering questions about the CV or before making updates."),
		mcp.WithString("cv_id", mcp.Required(), mcp.Description("The CV identifier")),
	)
	s.AddTool(getTool, h.handleGetCV)

	updateTool := mcp.NewTool("update_cv_personal_info",
		mcp.WithDescription("Update personal information in a CV: name, email, phone, address or professional summary. Only supplied fields change."),
		mcp.WithString("cv_id", mcp.Required(), mcp.Description("The CV identifier")),
		mcp.WithString("full_name", mcp.Description("New full name")),
		mcp.WithString("email", mcp.Description("New email address")),
		mcp.WithString("phone", mcp.Description("New phone number")),
		mcp.WithString("address", mcp.Description("New location/address")),
		mcp.WithString("summary", mcp.Description("New professional summary")),
	)
	s.AddTool(updateTool, h.handleUpdatePersonalInfo)

	expTool := mcp.NewTool("add_work_experience",
		mcp.WithDescription("Add a new work experience entry to the CV. Existing entries are preserved."),
		mcp.WithString("cv_id", mcp.Required(), mcp.Description("The CV identifier")),
		mcp.WithString("company", mcp.Required(), mcp.Description("Company name")),
		mcp.WithString("position", mcp.Required(), mcp.Description("Job position/title")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date (YYYY-MM-DD or descriptive)")),
		mcp.WithString("end_date", mcp.Description("End date (YYYY-MM-DD or descriptive)")),
		mcp.WithString("description", mcp.Description("Job description/responsibilities")),
	)
	s.AddTool(expTool, h.handleAddWorkExperience)

	skillTool := mcp.NewTool("add_skill",
		mcp.WithDescription("Add a new skill to the CV. Existing skills are preserved."),
		mcp.WithString("cv_id", mcp.Required(), mcp.Description("The CV identifier")),
		mcp.WithString("skill_name", mcp.Required(), mcp.Description("Name of the skill")),
	)
	s.AddTool(skillTool, h.handleAddSkill)

	return nil
}

func (h *CVHandler) handleGetCV(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return noTokenError(), nil
	}
	cvID, _ := req.RequireString("cv_id")

	cv, err := h.client.GetCV(ctx, cvID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error fetching CV: %v", err)), nil
	}
	b, _ := json.MarshalIndent(cv, "", "  ")
	return mcp.NewToolResultText(fmt.Sprintf("Successfully fetched CV data:\n\n%s", b)), nil
}

func (h *CVHandler) handleUpdatePersonalInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return noTokenError(), nil
	}
	cvID, _ := req.RequireString("cv_id")

	patch := map[string]any{}
	args := req.GetArguments()
	for arg, field := range map[string]string{
		"full_name": "fullName",
		"email":     "email",
		"phone":     "phone",
		"address":   "address",
		"summary":   "summary",
	} {
		if v, ok := args[arg].(string); ok && v != "" {
			patch[field] = v
		}
	}
	if len(patch) == 0 {
		return mcp.NewToolResultError("Error: no fields provided to update"), nil
	}

	if _, err := h.client.UpdateCV(ctx, cvID, patch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error updating CV: %v", err)), nil
	}
	fields := make([]string, 0, len(patch))
	for k := range patch {
		fields = append(fields, k)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully updated CV fields: %v", fields)), nil
}

// handleAddWorkExperience appends one entry. The update surface
// replaces sequences wholesale, so the current section is fetched first
// and resubmitted with the new entry appended.
func (h *CVHandler) handleAddWorkExperience(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return noTokenError(), nil
	}
	cvID, _ := req.RequireString("cv_id")
	company, _ := req.RequireString("company")
	position, _ := req.RequireString("position")
	startDate, _ := req.RequireString("start_date")

	cv, err := h.client.GetCV(ctx, cvID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding work experience: %v", err)), nil
	}

	entry := map[string]any{
		"company":   company,
		"position":  position,
		"startDate": startDate,
	}
	args := req.GetArguments()
	if v, ok := args["end_date"].(string); ok && v != "" {
		entry["endDate"] = v
	}
	if v, ok := args["description"].(string); ok && v != "" {
		entry["description"] = v
	}

	experience := make([]any, 0, len(cv.Experience)+1)
	for _, e := range cv.Experience {
		experience = append(experience, e)
	}
	experience = append(experience, entry)

	if _, err := h.client.UpdateCV(ctx, cvID, map[string]any{"experience": experience}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding work experience: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully added work experience: %s at %s", position, company)), nil
}

func (h *CVHandler) handleAddSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.client == nil {
		return noTokenError(), nil
	}
	cvID, _ := req.RequireString("cv_id")
	skill, _ := req.RequireString("skill_name")

	cv, err := h.client.GetCV(ctx, cvID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding skill: %v", err)), nil
	}
	skills := append(append([]string{}, cv.Skills...), skill)

	if _, err := h.client.UpdateCV(ctx, cvID, map[string]any{"skills": skills}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding skill: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully added skill: %s", skill)), nil
}

func noTokenError() *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: no bearer token configured. Cannot access CV data.")
}
