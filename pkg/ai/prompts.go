package ai

// ExtractPrompt is the feature-extraction prompt. Placeholders:
// repository context block, formatted fragment block.
const ExtractPrompt = `
# Task Context
You are a software archaeologist analyzing a legacy codebase. For each code
segment below, extract structured feature metadata.

%s

# Output Schema
Return a JSON array with exactly one object per code segment:
[
  {
    "file": "exact_file_path",
    "chunk_id": 0,
    "language": "language_label",
    "feature": "descriptive_feature_name",
    "description": "comprehensive technical description",
    "functions": [
      {"name": "", "signature": "", "start_line": 0, "end_line": 0, "class": ""}
    ],
    "classes": [
      {"name": "", "parent_class": "", "methods": [""]}
    ],
    "apis": [""],
    "dependencies": [""],
    "inputs": [""],
    "outputs": [""],
    "side_effects": [""],
    "requirements": [""],
    "comments": [""],
    "annotations": {}
  }
]

# Rules
- "file" and "chunk_id" must echo the values given in each segment header.
- "feature" must be a short, unique, descriptive name for what the segment does.
- Use empty arrays for categories with no findings, never null.
- Do NOT echo the source code back.

# Code Segments
%s

# Output Formatting
Return ONLY the JSON array. No markdown fences, no prose, no trailing commas.
`

// TranslatePrompt converts a natural-language question into a Cypher query.
// Placeholders: repository context, question.
const TranslatePrompt = `
# Task Context
You are an expert Neo4j Cypher query generator. Convert the question below
into one efficient Cypher query over this schema.

# Graph Schema
Nodes:
- Feature (name, description, language, chunk_id, code, annotations)
- Function (name, signature, start_line, end_line, class)
- Class (name, parent_class, methods)
- File (name, language)
- API (name)
- Dependency (name)
- Input (name)
- Output (name)
- SideEffect (name)
- Requirement (name)

Relationships:
- (Feature)-[:PART_OF_FILE]->(File)
- (Function)-[:PART_OF_FEATURE]->(Feature)
- (Class)-[:PART_OF_FEATURE]->(Feature)
- (Class)-[:INHERITS_FROM]->(Class)
- (Feature)-[:USES_API]->(API)
- (Feature)-[:DEPENDS_ON]->(Dependency)
- (Feature)-[:TAKES_INPUT]->(Input)
- (Feature)-[:PRODUCES]->(Output)
- (Feature)-[:CAUSES]->(SideEffect)
- (Feature)-[:REQUIRES]->(Requirement)

# Background Data
%s

# Question
"%s"

# Rules
1. Use case-insensitive matching with toLower() and CONTAINS for text searches.
2. Return node properties and related file names.
3. LIMIT results to 25.
4. Prioritize Feature, Function and Class nodes.

# Output Formatting
Return ONLY the Cypher query. No explanations, no markdown, no formatting.
`

// AnswerPrompt synthesizes the final answer from retrieved graph context.
// Placeholders: repository context, question, JSON context items.
const AnswerPrompt = `
# Task Context
You are a software analyst helping developers understand a legacy codebase.
Answer the question using only the retrieved code analysis data.

# Background Data
%s

# Question
"%s"

# Retrieved Code Analysis Data
%s

# Rules
1. Answer directly and comprehensively.
2. Cite concrete function names, class names and file locations from the data.
3. Explain what the code does and how it fits into the larger system.
4. Structure the response with headings and bullet points where it helps.
5. Never claim "no data available" - the data above is non-empty, use it.

# Output Formatting
Markdown. Start with a direct answer, end with practical next steps.
`
