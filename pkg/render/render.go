// Package render turns a finished command into a terminal-window artifact.
package render

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Artifact is a rendered result.
type Artifact struct {
	MIMEType string
	Data     []byte
}

// Renderer produces an artifact for a finished command. Callers must fall
// back to the plain text reply when Render fails.
type Renderer interface {
	Render(ctx context.Context, workingDir, command, output string) (Artifact, error)
}

const (
	charWidth        = 7.1
	horizontalBuffer = 56
	minWidth         = 600
	maxWidth         = 1600
	noOutput         = "(no output)"
)

var (
	ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	sgrSequence  = regexp.MustCompile(`\x1b\[([0-9;]*)m`)
	lineBreak    = regexp.MustCompile(`\r?\n`)
)

// TerminalRenderer renders an HTML page styled as a dark terminal window.
type TerminalRenderer struct{}

// Render builds the page. It fails only when ctx is done or the template
// cannot be executed.
func (TerminalRenderer) Render(ctx context.Context, workingDir, command, output string) (Artifact, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
	}

	display := strings.TrimLeftFunc(strings.ReplaceAll(orDefault(output), "\t", "        "), unicode.IsSpace)
	lines := lineBreak.Split(display, -1)

	longest := visibleLen(workingDir + "$ " + command)
	for _, line := range lines {
		longest = max(longest, visibleLen(line))
	}

	page := pageData{
		Width:   ContainerWidth(longest),
		Prompt:  workingDir + "$",
		Command: command,
		Output:  template.HTML(ANSIToHTML(display)),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return Artifact{}, errors.Join(errors.New("render terminal page"), err)
	}
	return Artifact{MIMEType: "text/html; charset=utf-8", Data: buf.Bytes()}, nil
}

// ContainerWidth estimates the page width in pixels for a line of n
// visible characters, clamped to [600, 1600].
func ContainerWidth(n int) int {
	w := int(math.Ceil(float64(n)*charWidth + horizontalBuffer))
	return min(maxWidth, max(minWidth, w))
}

// StripANSI removes ANSI escape sequences.
func StripANSI(text string) string {
	return ansiSequence.ReplaceAllString(text, "")
}

func visibleLen(text string) int {
	return utf8.RuneCountInString(StripANSI(text))
}

func orDefault(output string) string {
	if output == "" {
		return noOutput
	}
	return output
}

type pageData struct {
	Width   int
	Prompt  string
	Command string
	Output  template.HTML
}

var pageTemplate = template.Must(template.New("terminal").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { background: #1e1e1e; color: #cccccc; font-family: 'JetBrains Mono', 'Courier New', monospace; font-size: 13px; display: inline-block; width: {{.Width}}px; min-width: 600px; max-width: 1600px; }
.terminal { background: #1e1e1e; border: 1px solid #3c3c3c; border-radius: 8px; overflow: hidden; width: 100%; }
.title-bar { background: #2d2d2d; height: 35px; display: flex; align-items: center; justify-content: space-between; padding: 0 12px; border-bottom: 1px solid #3c3c3c; }
.buttons { display: flex; gap: 8px; }
.button { width: 12px; height: 12px; border-radius: 50%; }
.minimize { background: #ffbd2e; } .maximize { background: #28c940; } .close { background: #ff5f56; }
.content { padding: 8px 12px; white-space: pre; line-height: 1.18; }
.command-line { display: flex; gap: 3px; align-items: baseline; margin-bottom: 2px; }
.prompt { color: #4ec9b0; flex-shrink: 0; }
.command { color: #dcdcaa; flex: 1; }
.output { color: #cccccc; line-height: 1.12; white-space: pre; }
</style>
</head>
<body>
<div class="terminal">
<div class="title-bar"><div class="title">Terminal</div><div class="buttons"><div class="button minimize"></div><div class="button maximize"></div><div class="button close"></div></div></div>
<div class="content">
<div class="command-line"><div class="prompt">{{.Prompt}}</div><div class="command">{{.Command}}</div></div>
<div class="output">{{.Output}}</div>
</div>
</div>
</body>
</html>
`))
