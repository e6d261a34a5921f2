package ai

const ExtractPromptSchema = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text. The extraction is validated against a fixed schema: only the listed entity and relation types are allowed.

# Background Data
- **Entity_types:** [%s]
- **Relation_types:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the primary entity (e.g., *“House Data X”* → inferred entity: *“HOUSE X”*). Use it only if the text itself does not clearly specify an entity.

# Detailed Task Description & Rules
- Extract only entities whose type is one of the provided entity types. Do not invent new types.
- Extract only relationships whose type is one of the provided relation types. If no listed relation type fits, skip the relationship.
- Capture all details explicitly present in the text, without omission.

## Entity Extraction
1. Identify all entities of the specified types [%s].
2. For each entity, extract:
   - **entity_name:** The name of the entity, written in **ALL CAPITAL LETTERS**.
   - **entity_type:** Exactly one of the provided types [%s].
   - **entity_description:** A comprehensive description of all attributes, roles, activities, events, timelines, frequencies, or other explicit details in the text.
     - Include factual or key–value information if present.
     - Do **not** omit any explicit information.

## Relationship Extraction
1. From the identified entities, determine all clear relationships between pairs of entities.
2. For each relationship, extract:
   - **source_entity:** name of the source entity.
   - **target_entity:** name of the target entity.
   - **relationship_type:** Exactly one of the provided types [%s].
   - **relationship_description:** detailed explanation of how and why the entities are related, based strictly on the text.
   - **relationship_strength:** a numeric score (0.0–1.0) indicating the strength of the relationship (higher = stronger).
3. If no relationship fits the provided relation types, return an **empty array** for "relationships".

# Examples
**Entity_types:** ORGANIZATION, PERSON
**Relation_types:** EMPLOYED_BY, PART_OF
**Document_name:** “Meridian Staff Notes”
**Text:**
Dr. Elena Vasquez joined Meridian Labs in March as head of the sensor division. The sensor division is the largest unit inside Meridian Labs.

**Output:**
{
  "entities": [
    {
      "entity_name": "ELENA VASQUEZ",
      "entity_type": "PERSON",
      "entity_description": "Dr. Elena Vasquez joined Meridian Labs in March as head of the sensor division."
    },
    {
      "entity_name": "MERIDIAN LABS",
      "entity_type": "ORGANIZATION",
      "entity_description": "Meridian Labs is an organization that Dr. Elena Vasquez joined in March; its largest unit is the sensor division."
    },
    {
      "entity_name": "SENSOR DIVISION",
      "entity_type": "ORGANIZATION",
      "entity_description": "The sensor division is the largest unit inside Meridian Labs and is headed by Dr. Elena Vasquez."
    }
  ],
  "relationships": [
    {
      "source_entity": "ELENA VASQUEZ",
      "target_entity": "MERIDIAN LABS",
      "relationship_type": "EMPLOYED_BY",
      "relationship_description": "Dr. Elena Vasquez joined Meridian Labs in March as head of the sensor division.",
      "relationship_strength": 0.9
    },
    {
      "source_entity": "SENSOR DIVISION",
      "target_entity": "MERIDIAN LABS",
      "relationship_type": "PART_OF",
      "relationship_description": "The sensor division is the largest unit inside Meridian Labs.",
      "relationship_strength": 0.9
    }
  ]
}

# Thinking Step by Step
Think step-by-step and extract all entities and relationships as specified.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "entities": [
    {
      "entity_name": "string",
      "entity_type": "string",
      "entity_description": "string"
    }
  ],
  "relationships": [
    {
      "source_entity": "string",
      "target_entity": "string",
      "relationship_type": "string",
      "relationship_description": "string",
      "relationship_strength": "float"
    }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no entities or relationships are found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const ExtractPromptFree = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text. There is no fixed schema: choose the entity and relation types that best describe what the text contains.

# Background Data
- **Document_name:** [%s]

The document name may contain hints about the primary entity (e.g., *“House Data X”* → inferred entity: *“HOUSE X”*). Use it only if the text itself does not clearly specify an entity.

# Detailed Task Description & Rules
- Capture all details explicitly present in the text, without omission.
- Choose a short, specific type for every entity and relationship, written in ALL CAPITAL LETTERS (e.g., "PERSON", "RESEARCH_PROJECT", "FUNDED_BY").
- Keep types consistent within your output: if two entities are the same kind of thing, give them the same type.
- If the text includes relevant information that cannot be confidently assigned to a specific entity, extract it as a FACT entity with a name in the format "FACT: <SHORT TITLE>" (all-caps) and describe the full information in the description.
- If the text primarily consists of **factual, tabular, or key–value data** and does not explicitly name multiple entities or relationships, you must still extract the information by **inferring a single implicit entity** that represents the main subject of the text.

## Entity Extraction
1. Identify all entities present in the text.
2. For each entity, extract:
   - **entity_name:** The name of the entity, written in **ALL CAPITAL LETTERS**.
   - **entity_type:** A short, specific all-caps type of your choosing.
   - **entity_description:** A comprehensive description of all attributes, roles, activities, events, timelines, frequencies, or other explicit details in the text.

## Relationship Extraction
1. From the identified entities, determine all clear relationships between pairs of entities.
2. For each relationship, extract:
   - **source_entity:** name of the source entity.
   - **target_entity:** name of the target entity.
   - **relationship_type:** A short all-caps verb phrase naming the relation (e.g., "LOCATED_IN", "SUPPLIES").
   - **relationship_description:** detailed explanation of how and why the entities are related, based strictly on the text.
   - **relationship_strength:** a numeric score (0.0–1.0) indicating the strength of the relationship (higher = stronger).
3. If the text only describes a single implicit entity, return an **empty array** for "relationships".

# Examples
**Document_name:** “Coastal Grid Briefing”
**Text:**
The Alvor solar farm feeds 40 megawatts into the coastal grid. Its operator, Helia Energia, plans to double the capacity by 2027.

**Output:**
{
  "entities": [
    {
      "entity_name": "ALVOR SOLAR FARM",
      "entity_type": "POWER_PLANT",
      "entity_description": "The Alvor solar farm feeds 40 megawatts into the coastal grid; its operator plans to double the capacity by 2027."
    },
    {
      "entity_name": "COASTAL GRID",
      "entity_type": "INFRASTRUCTURE",
      "entity_description": "The coastal grid receives 40 megawatts from the Alvor solar farm."
    },
    {
      "entity_name": "HELIA ENERGIA",
      "entity_type": "ORGANIZATION",
      "entity_description": "Helia Energia operates the Alvor solar farm and plans to double its capacity by 2027."
    }
  ],
  "relationships": [
    {
      "source_entity": "ALVOR SOLAR FARM",
      "target_entity": "COASTAL GRID",
      "relationship_type": "FEEDS_INTO",
      "relationship_description": "The Alvor solar farm feeds 40 megawatts into the coastal grid.",
      "relationship_strength": 0.9
    },
    {
      "source_entity": "HELIA ENERGIA",
      "target_entity": "ALVOR SOLAR FARM",
      "relationship_type": "OPERATES",
      "relationship_description": "Helia Energia is the operator of the Alvor solar farm and plans to double its capacity by 2027.",
      "relationship_strength": 0.9
    }
  ]
}

# Thinking Step by Step
Think step-by-step and extract all entities and relationships as specified.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "entities": [
    {
      "entity_name": "string",
      "entity_type": "string",
      "entity_description": "string"
    }
  ],
  "relationships": [
    {
      "source_entity": "string",
      "target_entity": "string",
      "relationship_type": "string",
      "relationship_description": "string",
      "relationship_strength": "float"
    }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no entities or relationships are found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const ExtractPromptDynamic = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text. A seed list of entity types is given; prefer those types, but introduce a new type when none of them fits what the text contains.

# Background Data
- **Seed_entity_types:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the primary entity (e.g., *“House Data X”* → inferred entity: *“HOUSE X”*). Use it only if the text itself does not clearly specify an entity.

# Detailed Task Description & Rules
- Capture all details explicitly present in the text, without omission.
- Prefer the seed types [%s]. Introduce a new ALL CAPS type only when no seed type is a reasonable fit, and keep new types short and specific.
- Reuse a new type once introduced; do not create near-duplicate types (e.g., "LAW" and "REGULATION" for the same kind of thing).
- If the text includes relevant information that cannot be confidently assigned to a specific entity, extract it as a FACT entity with a name in the format "FACT: <SHORT TITLE>" (all-caps) and describe the full information in the description.
- If the text primarily consists of **factual, tabular, or key–value data** and does not explicitly name multiple entities or relationships, you must still extract the information by **inferring a single implicit entity** that represents the main subject of the text.

## Entity Extraction
1. Identify all entities in the text, using seed types where they fit.
2. For each entity, extract:
   - **entity_name:** The name of the entity, written in **ALL CAPITAL LETTERS**.
   - **entity_type:** A seed type, or a new short all-caps type when no seed type fits.
   - **entity_description:** A comprehensive description of all attributes, roles, activities, events, timelines, frequencies, or other explicit details in the text.

## Relationship Extraction
1. From the identified entities, determine all clear relationships between pairs of entities.
2. For each relationship, extract:
   - **source_entity:** name of the source entity.
   - **target_entity:** name of the target entity.
   - **relationship_type:** A short all-caps verb phrase naming the relation (e.g., "REGULATED_BY", "WORKS_FOR").
   - **relationship_description:** detailed explanation of how and why the entities are related, based strictly on the text.
   - **relationship_strength:** a numeric score (0.0–1.0) indicating the strength of the relationship (higher = stronger).
3. If the text only describes a single implicit entity, return an **empty array** for "relationships".

# Examples
**Seed_entity_types:** ORGANIZATION, PERSON
**Document_name:** “Port Compliance Review”
**Text:**
The Port of Vigo must comply with Directive 2019/883 on ship waste. Harbour master Inés Costa oversees the implementation.

**Output:**
{
  "entities": [
    {
      "entity_name": "PORT OF VIGO",
      "entity_type": "ORGANIZATION",
      "entity_description": "The Port of Vigo must comply with Directive 2019/883 on ship waste; implementation is overseen by harbour master Inés Costa."
    },
    {
      "entity_name": "DIRECTIVE 2019/883",
      "entity_type": "REGULATION",
      "entity_description": "Directive 2019/883 governs ship waste and applies to the Port of Vigo."
    },
    {
      "entity_name": "INÉS COSTA",
      "entity_type": "PERSON",
      "entity_description": "Inés Costa is the harbour master who oversees the implementation of Directive 2019/883 at the Port of Vigo."
    }
  ],
  "relationships": [
    {
      "source_entity": "PORT OF VIGO",
      "target_entity": "DIRECTIVE 2019/883",
      "relationship_type": "REGULATED_BY",
      "relationship_description": "The Port of Vigo must comply with Directive 2019/883 on ship waste.",
      "relationship_strength": 0.9
    },
    {
      "source_entity": "INÉS COSTA",
      "target_entity": "PORT OF VIGO",
      "relationship_type": "WORKS_FOR",
      "relationship_description": "Inés Costa is the harbour master of the Port of Vigo and oversees the directive's implementation.",
      "relationship_strength": 0.8
    }
  ]
}
Note how "REGULATION" is introduced because no seed type fits a directive, while the other entities stay on seed types.

# Thinking Step by Step
Think step-by-step and extract all entities and relationships as specified.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "entities": [
    {
      "entity_name": "string",
      "entity_type": "string",
      "entity_description": "string"
    }
  ],
  "relationships": [
    {
      "source_entity": "string",
      "target_entity": "string",
      "relationship_type": "string",
      "relationship_description": "string",
      "relationship_strength": "float"
    }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no entities or relationships are found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const ExtractPromptImplicit = `
# Task Context
You are tasked with extracting **structured entity and relationship information** from the provided text, including relationships that are **implied** by the text rather than stated outright. A seed list of entity types is given; prefer those types, but introduce a new type when none of them fits.

# Background Data
- **Seed_entity_types:** [%s]
- **Document_name:** [%s]

The document name may contain hints about the primary entity (e.g., *“House Data X”* → inferred entity: *“HOUSE X”*). Use it only if the text itself does not clearly specify an entity.

# Detailed Task Description & Rules
- Capture all details explicitly present in the text, without omission.
- Prefer the seed types [%s]. Introduce a new ALL CAPS type only when no seed type is a reasonable fit.
- Beyond the explicitly stated relationships, derive relationships the text clearly implies: resolved pronouns, shared locations, roles that follow from stated facts.
- Mark every derived relationship with "inferred": true and every stated relationship with "inferred": false.
- Inferred relationships must follow from the text alone. Do not use outside knowledge, and do not infer what is merely possible.
- Give inferred relationships a lower strength score than stated ones unless the implication is unavoidable.

## Entity Extraction
1. Identify all entities in the text, using seed types where they fit.
2. For each entity, extract:
   - **entity_name:** The name of the entity, written in **ALL CAPITAL LETTERS**.
   - **entity_type:** A seed type, or a new short all-caps type when no seed type fits.
   - **entity_description:** A comprehensive description of all attributes, roles, activities, events, timelines, frequencies, or other explicit details in the text.

## Relationship Extraction
1. From the identified entities, determine all stated relationships between pairs of entities.
2. Then determine the relationships the text implies between pairs of entities.
3. For each relationship, extract:
   - **source_entity:** name of the source entity.
   - **target_entity:** name of the target entity.
   - **relationship_type:** A short all-caps verb phrase naming the relation.
   - **relationship_description:** detailed explanation of how the entities are related. For inferred relationships, state what in the text implies the relation.
   - **relationship_strength:** a numeric score (0.0–1.0) indicating the strength of the relationship (higher = stronger).
   - **inferred:** true if the relationship is derived rather than stated.

# Examples
**Seed_entity_types:** ORGANIZATION, PERSON, LOCATION
**Document_name:** “Founder Profile”
**Text:**
Marta Reyes founded Helix Robotics in Porto. The company's entire engineering team works out of her garage.

**Output:**
{
  "entities": [
    {
      "entity_name": "MARTA REYES",
      "entity_type": "PERSON",
      "entity_description": "Marta Reyes founded Helix Robotics in Porto; the company's engineering team works out of her garage."
    },
    {
      "entity_name": "HELIX ROBOTICS",
      "entity_type": "ORGANIZATION",
      "entity_description": "Helix Robotics was founded by Marta Reyes in Porto and its entire engineering team works out of her garage."
    },
    {
      "entity_name": "PORTO",
      "entity_type": "LOCATION",
      "entity_description": "Porto is the city where Helix Robotics was founded."
    }
  ],
  "relationships": [
    {
      "source_entity": "MARTA REYES",
      "target_entity": "HELIX ROBOTICS",
      "relationship_type": "FOUNDED",
      "relationship_description": "Marta Reyes founded Helix Robotics in Porto.",
      "relationship_strength": 0.9,
      "inferred": false
    },
    {
      "source_entity": "HELIX ROBOTICS",
      "target_entity": "PORTO",
      "relationship_type": "LOCATED_IN",
      "relationship_description": "Helix Robotics was founded in Porto and its engineering team works out of the founder's garage there.",
      "relationship_strength": 0.8,
      "inferred": false
    },
    {
      "source_entity": "MARTA REYES",
      "target_entity": "PORTO",
      "relationship_type": "LIVES_IN",
      "relationship_description": "The company founded in Porto operates out of Marta Reyes's garage, which implies her garage, and therefore her home, is in Porto.",
      "relationship_strength": 0.6,
      "inferred": true
    }
  ]
}

# Thinking Step by Step
Think step-by-step: first extract entities, then the stated relationships, then the relationships the text implies.

# Output Formatting
The output must be a single valid JSON object in this structure:
{
  "entities": [
    {
      "entity_name": "string",
      "entity_type": "string",
      "entity_description": "string"
    }
  ],
  "relationships": [
    {
      "source_entity": "string",
      "target_entity": "string",
      "relationship_type": "string",
      "relationship_description": "string",
      "relationship_strength": "float",
      "inferred": "bool"
    }
  ]
}
Do not include any commentary, explanations, or text outside of the JSON.
Always return valid JSON, even if no entities or relationships are found (use empty arrays in that case).
Make sure to follow the rules and output format carefully.
`

const KeywordPrompt = `
# Task Context
You are an assistant that expands a user question into search keywords for knowledge graph retrieval.

# Background Data
- Previous answer: "%s"
- User question: "%s"

# Detailed Task Description & Rules
- Produce up to %d keywords: the names the question mentions, plus synonyms, aliases, and closely related terms a graph node might be stored under.
- If the user’s question is vague (e.g., uses pronouns like "he", "there", "them", or follow-ups like "and what about...?"), treat the previous answer as contextual grounding and resolve the references before expanding.
- Keywords should be short noun phrases, not sentences.
- Order keywords from most to least specific.
- Do not pad the list: fewer precise keywords beat many loose ones.

# Examples
Previous answer: ""
User question: "Who runs the sensor division at Meridian Labs?"

Output:
{
  "keywords": ["sensor division", "Meridian Labs", "division head", "research leadership"]
}

# Output Formatting
Return JSON with the following structure:
{
  "keywords": [string]   // Up to the requested number of search terms, most specific first
}
Output must be valid JSON only (no commentary, no extra text).
`

const QueryPrompt = `
# Task Context
You are a helpful assistant that provides high-quality answers based only on the provided data from a knowledge graph and previously cited information available in the chat history.

# Background Data
The data is provided in the following format:

Relevant Entities:
<entity_name>,<id>: <sentence>
<entity_name>,<id>: <sentence>

Connecting Relationships:
<entity_name<->entity_name>,<id>: <sentence>
<entity_name<->entity_name>,<id>: <sentence>

Source Text:
<file_name>,<id>: <original text excerpt>

## Data
%s

# Detailed Task Description & Rules
- Do not add any information that is not present in the provided data or in previous answers that include source IDs.

## Rules for Data Interpretation
- **Text Content over Graph Structure:** Always derive your answer from the *narrative text sentences* provided in the data, not from the count or existence of Entity IDs.
- **Do not count Entities:** If the user asks "How many...", do not count the number of entity rows found in the data. Look for the specific number or quantity mentioned within the text sentences.
- **Ignore Internal Metadata:** Do not treat internal Entity IDs (e.g., "ID 2", "ID 19") as factual content to be reported to the user. Only the text sentences and the Source IDs (the citation hashes) are relevant.
- **Never leak internal IDs or Names:** Do not include any internal Entity/Relationship IDs or Names in your answer. Only use the Names and IDs found in the text sentences and Sources IDs for citations.**
- **When referencing an entity or relationship never leak its id. Use a user friendly name (language of the user).**
- **Only use the ids of sources provided by the data or chat history for citing. Wrap it in [[]].**

## Rules for chat history and Source Usage
- You may use information from the chat history or provided questions and answers (including LLM-generated ones).
- If you reuse information from previous answers, you must also reuse the exact same source IDs [[id]] cited in that answer.
- Never invent new IDs. Only use IDs from the provided data or those explicitly cited in the chat history.
- Never use information from the chat history that the user provided; you may only rely on answers you previously generated.
- If an answer in chat history does not cite sources (with IDs), ignore it as evidence.

## Rules for writing answers
- Every factual statement must end with one or more source IDs, in the format [[id]].
- A statement may have multiple sources: [[id]] [[id]].
- Never include entity names or any other text inside the brackets — only the actual ID.
- Never leave a placeholder [[id]]. Always replace with actual IDs.
- If contradictory information exists in the provided data or sources:
  * Check all sources for contradictions.
  * Present all contradictory statements explicitly.
  * Clearly indicate that these statements are contradictory.
  * Do not choose one version; include them all so the user can decide.
  * Example: "Entity A is described as X [[id1]]. However, Entity A is also described as Y [[id2]]. These statements are contradictory."
- If no source ID applies to a statement, do not include that statement.
- If you cannot find an answer, respond with: "I don't know, but you can provide new sources with that information." in the language of the user.
- If the question is not related to the data, respond with: "There is no information available." in the language of the user.

# Immediate Task Description or Request
Your goal is to provide the most complete, accurate, and source-grounded answer possible.

# Output Formatting
- Return only the direct answer (no introduction or concluding summary).
- Format your answer in Markdown.
- Always respond in the same language as the question.
- **Never leak internal IDs or Names:** Do not include any internal Entity/Relationship IDs or Names in your answer. Only use the Names and IDs found in the text sentences and Sources IDs for citations.**
- **When referencing an entity or relationship never leak its id. Use a user friendly name (language of the user).**
- **Only use the ids of sources provided by the data or chat history for citing. Wrap it in [[]].**
`

const NoDataPrompt = `
# Task Context
You are a helpful assistant. The user asked a question, but no relevant information was found in the knowledge graph.

# Background Data
User's question: %s

# Detailed Task Description & Rules
- Generate a brief, helpful response explaining that no relevant information is available in the knowledge graph.
- Do not apologize excessively. Be concise and direct.
- Do not invent or hallucinate any information.
- Suggest that the user could add documents to the corpus and rebuild if they want this information to be available.

# Output Formatting
- Respond in the SAME LANGUAGE as the user's question.
- Keep the response short (1-2 sentences).
- Do not use markdown formatting.
`
