// Package legal defines the legal-assistant agents, their prompts and the
// pipelines built from them, and the Service that runs those pipelines.
//
// Two topologies are offered and the caller picks one:
//
//	end-to-end: intake -> {sections, precedents} -> {notification, document}
//	split:      advisory stage: intake -> advisory
//	            drafting stage: {sections, precedents} -> document
//
// The split topology hands the advisory stage's outputs to the drafting
// stage explicitly, through AnalyzeResult.
package legal
