package gql

// Schema is the GraphQL SDL served at /graphql. Mutations mirror the
// REST surface and go through the same service path, publish included.
const Schema = `
schema {
    query: Query
    mutation: Mutation
    subscription: Subscription
}

scalar Time

type Query {
    me: User!
    cv(cvId: ID!): CV!
    myCvs: [CV!]!
}

type Mutation {
    createCv(input: CVInput!): CV!
    updateCv(cvId: ID!, input: CVInput!): CV!
    deleteCv(cvId: ID!): Boolean!
}

type Subscription {
    cvUpdates(cvId: ID!): CV!
}

type User {
    id: ID!
    username: String!
    displayName: String
}

type CV {
    id: ID!
    userId: ID!
    fullName: String
    email: String
    phone: String
    address: String
    linkedin: String
    github: String
    website: String
    summary: String
    experience: [Experience!]
    education: [Education!]
    skills: [String!]
    languages: [Language!]
    certifications: [Certification!]
    projects: [Project!]
    references: [Reference!]
    createdAt: Time!
    updatedAt: Time!
}

type Experience {
    company: String!
    position: String!
    startDate: String!
    endDate: String
    description: String
    location: String
}

type Education {
    institution: String!
    degree: String!
    fieldOfStudy: String!
    startDate: String!
    endDate: String
    grade: String
    description: String
}

type Language {
    language: String!
    proficiency: String!
}

type Certification {
    name: String!
    issuingOrganization: String!
    issueDate: String!
    expiryDate: String
    credentialId: String
    credentialUrl: String
}

type Project {
    name: String!
    description: String!
    technologies: [String!]!
    startDate: String
    endDate: String
    url: String
}

type Reference {
    name: String!
    position: String!
    company: String!
    email: String
    phone: String
}

input CVInput {
    fullName: String
    email: String
    phone: String
    address: String
    linkedin: String
    github: String
    website: String
    summary: String
    experience: [ExperienceInput!]
    education: [EducationInput!]
    skills: [String!]
    languages: [LanguageInput!]
    certifications: [CertificationInput!]
    projects: [ProjectInput!]
    references: [ReferenceInput!]
}

input ExperienceInput {
    company: String!
    position: String!
    startDate: String!
    endDate: String
    description: String
    location: String
}

input EducationInput {
    institution: String!
    degree: String!
    fieldOfStudy: String!
    startDate: String!
    endDate: String
    grade: String
    description: String
}

input LanguageInput {
    language: String!
    proficiency: String!
}

input CertificationInput {
    name: String!
    issuingOrganization: String!
    issueDate: String!
    expiryDate: String
    credentialId: String
    credentialUrl: String
}

input ProjectInput {
    name: String!
    description: String!
    technologies: [String!]!
    startDate: String
    endDate: String
    url: String
}

input ReferenceInput {
    name: String!
    position: String!
    company: String!
    email: String
    phone: String
}
`
