package summarize

// Built-in phase prompts; both can be overridden per deployment via
// pipeline config.

const defaultFileSummaryPrompt = `You are a document condenser for a writing assistant. ` +
	`Produce a faithful, compact digest of the document you are given: keep its structure, ` +
	`key facts, figures, names and conclusions, and drop filler. Write the digest in the ` +
	`document's own language. Output only the digest.`

const defaultContextSummaryPrompt = `You are a conversation condenser for a writing assistant. ` +
	`Fold the conversation you are given into a running summary that preserves the user's goals, ` +
	`decisions made, constraints stated, and any unresolved threads. If a previous summary is ` +
	`provided, merge it with the new turns instead of restating it. Output only the summary.`
