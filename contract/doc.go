// Package contract describes the expected shape of a node's output and turns
// raw model text into checked values.
//
// Free-text outputs pass through verbatim. Structured outputs are JSON,
// optionally wrapped in markdown code fences; Parse strips the fences,
// checks the required fields and fills declared defaults. A filled default is
// a degradation: it is recorded in Parsed.Defaulted and reported with Report,
// never applied silently. Output that cannot be parsed at all becomes a
// CONTRACT_VIOLATION error carrying the raw text.
package contract
