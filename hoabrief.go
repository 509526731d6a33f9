// Package hoabrief analyzes a homeowners-association document set and
// produces a due-diligence brief. It loads mixed-format documents from a
// directory, assigns each one an authority rank based on its category,
// ingests the set into a managed retrieval backend, runs a fixed battery
// of questions against it, and writes a report in which every answer cites
// its source documents in authority order.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, openai/, gemini/).
package hoabrief
