// Package ai builds study prompts from notes and sends them to a chat
// completion model.
package ai

import (
	"context"
	"strings"

	"study-notes/models"
)

// NoNotesMessage is returned by Summarize when there is nothing to summarize.
const NoNotesMessage = "You have no notes to summarize yet."

const (
	defaultMaxTokens = 500
	askMaxTokens     = 4096
	noteQuizTokens   = 1000
	groupQuizTokens  = 4096
)

const htmlStyle = "Use the HTML format so it can be displayed in a browser, don't add any extra elements like header or footer, only use the HTML format to put the answer in. Make them look easy to understand and pleasing to see. Use every possible element you can to style the HTML. Don't use classes if you're gonna style the elements, only use inline style attribute."

const (
	askPrompt       = "You are a helpful study assistant. Answer the students questions or do what they ask. " + htmlStyle
	askNotePrompt   = "You are a helpful study assistant. Answer the students questions. " + htmlStyle
	summarizePrompt = "You are a helpful study assistant. Summarize the user's notes concisely. " + htmlStyle
	titlePrompt     = "Create a title for given note. Keep it as short and as simple as possible, one sentence only. Send the title and nothing else. Don't use any counters or bullet points."
)

const quizSchema = `{
  "question": "Question string",
  "options": {"a": "option string", "b": "option string", "c": "option string", "d": "option string"},
  "correct_answer": "a, b, c or d",
  "explanation": "The correct answer explanation string"
}`

const (
	noteQuizPrompt  = "Create a quiz for the given note. Structure every question as this JSON object: " + quizSchema + ". Send the quiz as JSON, not as a string. If there are multiple questions put them in an array under the key \"questions\". Don't send anything else but the JSON object."
	groupQuizPrompt = "Create a quiz for the given notes. Structure every question as this JSON object: " + quizSchema + ". Send the quiz as JSON, not as a string. Put the questions in an array under the key \"questions\". Don't send anything else but the JSON object. Create as many questions as fit, at least one for each note."
)

// Instruction prefixes accepted by Ask.
const (
	Explain    = "Explain"
	Summarize  = "Summarize"
	Continue   = "Continue"
	FixGrammar = "Fix Grammar"
)

var instructions = map[string]string{
	Explain:    "Explain the following text:",
	Summarize:  "Summarize the following text:",
	Continue:   "Continue writing from the next text:",
	FixGrammar: "Fix Grammar in the following text, only send the corrected text, nothing else:",
}

// Request is one system+user exchange with the model.
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// Completer sends a request to a chat model and returns its text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Assistant implements the study features on top of a Completer.
type Assistant struct {
	llm Completer
}

func NewAssistant(llm Completer) *Assistant {
	return &Assistant{llm: llm}
}

// Ask answers a free-form question. instruction, when set, must be one of
// the instruction prefixes and is prepended to the question.
func (a *Assistant) Ask(ctx context.Context, question, instruction string) (string, error) {
	user := question
	if prefix, ok := instructions[instruction]; ok {
		user = prefix + " " + question
	}
	return a.llm.Complete(ctx, Request{System: askPrompt, User: user, MaxTokens: askMaxTokens})
}

// AskAboutNotes answers a question using the given notes as context.
func (a *Assistant) AskAboutNotes(ctx context.Context, notes []models.Note, question string) (string, error) {
	user := "Here are my notes: \n" + notesText(notes) + "\n\nQuestion: " + question
	return a.llm.Complete(ctx, Request{System: askNotePrompt, User: user, MaxTokens: defaultMaxTokens})
}

// Summarize summarizes the notes. With no notes it returns NoNotesMessage
// without calling the model.
func (a *Assistant) Summarize(ctx context.Context, notes []models.Note) (string, error) {
	if len(notes) == 0 {
		return NoNotesMessage, nil
	}
	user := "Here are my notes: \n" + notesText(notes)
	return a.llm.Complete(ctx, Request{System: summarizePrompt, User: user, MaxTokens: defaultMaxTokens})
}

// Title proposes a single-line title for note text.
func (a *Assistant) Title(ctx context.Context, text string) (string, error) {
	out, err := a.llm.Complete(ctx, Request{
		System:    titlePrompt,
		User:      "Create a fitting title for all of this content: " + text,
		MaxTokens: defaultMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

// NoteQuiz builds a quiz from a single note.
func (a *Assistant) NoteQuiz(ctx context.Context, note models.Note) (*models.Quiz, error) {
	out, err := a.llm.Complete(ctx, Request{
		System:    noteQuizPrompt,
		User:      "Here is the note: " + note.Content,
		MaxTokens: noteQuizTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseQuiz(out)
}

// GroupQuiz builds one quiz covering several notes.
func (a *Assistant) GroupQuiz(ctx context.Context, notes []models.Note) (*models.Quiz, error) {
	contents := make([]string, 0, len(notes))
	for _, n := range notes {
		contents = append(contents, n.Content)
	}
	out, err := a.llm.Complete(ctx, Request{
		System:    groupQuizPrompt,
		User:      "Here are the notes: " + strings.Join(contents, "\n\n"),
		MaxTokens: groupQuizTokens,
	})
	if err != nil {
		return nil, err
	}
	return ParseQuiz(out)
}

func notesText(notes []models.Note) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		parts = append(parts, n.Title+": "+n.Content)
	}
	return strings.Join(parts, "\n\n")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"'`)
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
