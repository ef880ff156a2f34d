package recognize

// StackPrompt returns the fixed instruction prompt sent with every stack
// photo. It constrains the reply to the line format ParseListing expects.
func StackPrompt() string {
	return `You are analyzing a photo of a physical stack of books.

Identify EVERY book you can read, from the top of the stack to the bottom.

INSTRUCTIONS:
1. Read each spine or cover carefully, including sideways or rotated text
2. Include books that are partially occluded when the title is still legible
3. Return each book as a separate line in exactly this format: "Title";"Author"
4. Use "unknown" for any field you cannot read
5. Keep the top-to-bottom order of the stack

OUTPUT FORMAT:
Return ONLY the book lines. No commentary, no numbering, no extra text.

Example output:
"The Hobbit";"J.R.R. Tolkien"
"De Avonden";"Gerard Reve"
"unknown";"Hella S. Haasse"`
}
