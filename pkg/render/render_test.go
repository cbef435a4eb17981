package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerWidth(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"empty clamps to minimum", 0, 600},
		{"short line clamps to minimum", 40, 600},
		{"mid range", 100, 766},
		{"long line clamps to maximum", 1000, 1600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerWidth(tt.n))
		})
	}
}

func TestANSIToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"escapes markup", `<b>"x" & y</b>`, "&lt;b&gt;&#34;x&#34; &amp; y&lt;/b&gt;"},
		{"color then reset", "\x1b[31mred\x1b[0m done", `<span style="color:#cd3131">red</span> done`},
		{"bright bold", "\x1b[1;92mok\x1b[m", `<span style="color:#23d18b;font-weight:bold">ok</span>`},
		{"unterminated span is closed", "\x1b[34mblue", `<span style="color:#2472c8">blue</span>`},
		{"256 color", "\x1b[38;5;196mx\x1b[0m", `<span style="color:#ff0000">x</span>`},
		{"truecolor background", "\x1b[48;2;1;2;3mx\x1b[0m", `<span style="background-color:#010203">x</span>`},
		{"cursor sequences dropped", "a\x1b[2Kb\x1b[1Ac", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ANSIToHTML(tt.in))
		})
	}
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red plain", StripANSI("\x1b[31mred\x1b[0m plain"))
}

func TestTerminalRendererRender(t *testing.T) {
	artifact, err := TerminalRenderer{}.Render(context.Background(), "/srv/work", "echo <hi>", "\n\t<hi>\n")
	require.NoError(t, err)

	assert.Equal(t, "text/html; charset=utf-8", artifact.MIMEType)
	page := string(artifact.Data)
	assert.Contains(t, page, "/srv/work$")
	assert.Contains(t, page, "echo &lt;hi&gt;")
	assert.Contains(t, page, `<div class="output">&lt;hi&gt;`)
	assert.Contains(t, page, "width: 600px")
	assert.NotContains(t, page, "<hi>")
}

func TestTerminalRendererEmptyOutput(t *testing.T) {
	artifact, err := TerminalRenderer{}.Render(context.Background(), "/srv", "true", "")
	require.NoError(t, err)
	assert.Contains(t, string(artifact.Data), noOutput)
}

func TestTerminalRendererWideOutput(t *testing.T) {
	output := strings.Repeat("x", 200)
	artifact, err := TerminalRenderer{}.Render(context.Background(), "/srv", "cat wide", output)
	require.NoError(t, err)
	// 200*7.1 + 56 = 1476
	assert.Contains(t, string(artifact.Data), "width: 1476px")
}

func TestTerminalRendererCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TerminalRenderer{}.Render(ctx, "/srv", "ls", "a")
	assert.ErrorIs(t, err, context.Canceled)
}
