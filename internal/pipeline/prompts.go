// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"text/template"
)

var syllabusPromptTmpl = template.Must(template.New("syllabus").Parse(
	`Create a syllabus for '{{.Topic}}' for {{.Audience}}. List exactly {{.Modules}} modules. Format as 'Module X: Title'.`))

var lessonPromptTmpl = template.Must(template.New("lesson").Parse(`Write the FULL DETAILED LESSON for '{{.Title}}'.
- This must be a deep dive.
- Include 'Practical Code Examples' (if technical).
- CRITICAL: Every code block MUST be immediately followed by a detailed explanation of what the code does.
- Include a 'Common Pitfalls' section.
- Write at least {{.MinWords}} words.
`))

// reviewPrompt refers to the lesson implicitly; the reviewer sees it in history.
const reviewPrompt = "Review this lesson. Improve structure, add bolding to key terms, and ensure code blocks are formatted."

var quizPromptTmpl = template.Must(template.New("quiz").Parse(
	`Create a short {{.Questions}}-question quiz specifically for '{{.Title}}' based on the lesson above.`))

// SyllabusPrompt is the curriculum stage request.
func SyllabusPrompt(topic, audience string, modules int) string {
	return render(syllabusPromptTmpl, map[string]any{"Topic": topic, "Audience": audience, "Modules": modules})
}

// LessonPrompt is the content stage request for one module.
func LessonPrompt(title string, minWords int) string {
	return render(lessonPromptTmpl, map[string]any{"Title": title, "MinWords": minWords})
}

// ReviewPrompt is the review stage request.
func ReviewPrompt() string { return reviewPrompt }

// QuizPrompt is the quiz stage request for one module.
func QuizPrompt(title string, questions int) string {
	return render(quizPromptTmpl, map[string]any{"Title": title, "Questions": questions})
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("rendering %s prompt: %v", t.Name(), err))
	}
	return buf.String()
}
