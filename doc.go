// Package inquiro provides a research orchestration library for Go.
//
// Inquiro turns a natural-language query into a structured research report:
// it dispatches the query to a web-search provider under a fixed concurrency
// bound, normalizes the returned sources, links them into a keyword knowledge
// graph, and caches the assembled report for repeat queries. Every failure on
// the way is classified and recorded in a bounded error ledger.
//
// # Basic Usage
//
// Create an agent with a search provider and an error tracker:
//
//	provider, err := search.NewTavilyClient("tvly-your-key")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	tracker := errtrack.NewTracker("error_stats.json", slog.Default())
//	agent := inquiro.NewAgent(provider, tracker, inquiro.AgentConfig{}, slog.Default())
//
//	report, err := agent.SearchAndAnalyze(ctx, "quantum computing advances", 2)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, src := range report.Sources {
//		fmt.Printf("%s (%s)\n", src.Title, src.Domain)
//	}
//
// # Pipeline
//
// SearchAndAnalyze runs a fixed sequence for every query:
//
//  1. Validate the query and depth, rejecting both problems at once.
//  2. Return a cached report when the same query and depth ran before.
//  3. Claim a concurrency slot; at most five provider calls run at a time.
//  4. Search the provider, basic at depth 1 and advanced beyond.
//  5. Normalize the payload, repairing near-JSON responses when possible.
//  6. Convert each result into a Source, skipping unusable entries.
//  7. Build the knowledge graph linking source titles to extracted keywords.
//  8. Assemble, cache, and return the report.
//
// # Error Handling
//
// Failures carry a classification from pkg/errtrack:
//
//   - ValidationError: bad query or depth, with a reason per field
//   - ProviderError: search provider failure, with an HTTP-like status
//   - SerializationError: a result could not be made transmittable
//
// Every tracked error lands in the Tracker's ledger, which keeps lifetime
// counters and a bounded recent timeline persisted to disk.
//
// # Architecture
//
// The library follows a modular architecture:
//
//   - pkg/search: provider interface, Tavily client, payload normalization
//   - pkg/graph: keyword knowledge graph construction
//   - pkg/cache: report cache keyed by query and depth
//   - pkg/errtrack: error taxonomy, envelope formatting, and the ledger
//   - pkg/ratelimit: the concurrency gate on provider calls
//   - pkg/storage: report and synthesis persistence
//
// This design allows easy extension with additional search providers and
// storage backends.
package inquiro
