package legal

// Prompt templates. Placeholders resolve against the pipeline inputs
// (user_input, case_summary, advisory_analysis, language_preference,
// search_hint) and the outputs of dependency nodes. Dependency outputs are
// also appended to every prompt as a context section.

const intakePrompt = `The user has submitted the following legal query:

{{.user_input}}

Your job is to interpret it, identify the core legal issue, classify the legal domain (e.g., civil, criminal, labor), and return a structured JSON.

The user's language preference is: {{.language_preference}}

Return ONLY a JSON object with the keys "case_type", "legal_domain", "summary", "relevant_entities" and "jurisdiction" (if any). For example:
{"case_type": "Wrongful Termination", "legal_domain": "Labor Law", "summary": "The user reports being fired after refusing to work unpaid overtime.", "relevant_entities": ["user", "employer"], "jurisdiction": "India"}`

const sectionsPrompt = `Identify the sections of the Indian Penal Code (IPC) that apply to this legal issue.
{{- if .case_summary}}

Case summary:
{{.case_summary}}
{{- end}}
{{- if .advisory_analysis}}

Advisory analysis:
{{.advisory_analysis}}
{{- end}}

Use your search tool to find the 3 to 5 most relevant sections. Append {{.search_hint}} to every search query, for example: "theft of mobile phone {{.search_hint}}".

Return ONLY a JSON array. Each element has the keys "section" (or "page", depending on the source), "language" (english or hindi), "granularity" (section or page) and "content".`

const precedentsPrompt = `Search for Indian legal precedents relevant to this legal issue.
{{- if .case_summary}}

Case summary:
{{.case_summary}}
{{- end}}

Use your search tool to retrieve case titles, brief summaries and links to full judgments. Only use results from trusted Indian legal sources.

Write a single, cohesive, well-structured paragraph that summarizes the key precedent cases, explains their importance and how they relate to the legal issue at hand.`

const notificationPrompt = `Draft a concise, professional outreach email to a local lawyer summarizing the user's issue and the most relevant IPC sections, and requesting a consultation.

Return ONLY a JSON object with the keys "subject" and "body". Do not include code fences or extra text.

Write the body as simple bullet points with clear labels:
- Greeting: [e.g., Dear [Lawyer Name],]
- Purpose: [one line stating the consultation request]
- Case Summary: [1-2 lines]
- Key Facts:
  - [fact 1]
  - [fact 2]
  - [fact 3]
- Relevant IPC Sections:
  - [Section Number]: [Short title] - [Why applicable]
- Request: [proposed next step, preferred timeline]
- Contact: [user name or placeholder], [phone/email if available]
- Sign-off: [Sincerely/Regards], [User]`

const documentPrompt = `Based on the case summary, the applicable IPC sections and the precedents, draft a formal legal document (e.g., FIR or legal notice) that the user can submit.
{{- if .case_summary}}

Case summary:
{{.case_summary}}
{{- end}}
{{- if .advisory_analysis}}

Advisory analysis:
{{.advisory_analysis}}
{{- end}}

Output clean Markdown with headings and bullet points (no code fences), using this structure:
# [ALL CAPS TITLE]
- **Date**: [Current Date]
- **Parties**: [Complainant] vs [Respondent]

## Factual Summary
- [1-3 short bullets]

## Applicable IPC Sections
- [Section Number]: [Short Title] - [Why applicable]

## Demand / Request
- [What action is requested and preferred timeline]

## Sender Details
- [Name], [Address], [Contact]`

const advisoryPrompt = `Using the case intake, assess the user's situation and recommend what to do next.

Return ONLY a JSON object with the keys:
- "severity": one of Low, Medium, High, Critical
- "legal_type": the kind of matter, e.g. Criminal, Civil, Family, Labor, Consumer, Property
- "recommended_action": the single most useful next step, e.g. File FIR, Send Legal Notice, Approach Consumer Forum
- "step_guidance": two or three sentences telling the user exactly what to do first`
