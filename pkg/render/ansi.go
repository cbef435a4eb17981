package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

var basePalette = [16]string{
	"#000000", "#cd3131", "#0dbc79", "#e5e510", "#2472c8", "#bc3fbc", "#11a8cd", "#e5e5e5",
	"#666666", "#f14c4c", "#23d18b", "#f5f543", "#3b8eea", "#d670d6", "#29b8db", "#ffffff",
}

type sgrState struct {
	fg, bg    string
	bold      bool
	italic    bool
	underline bool
}

func (s sgrState) style() string {
	var parts []string
	if s.fg != "" {
		parts = append(parts, "color:"+s.fg)
	}
	if s.bg != "" {
		parts = append(parts, "background-color:"+s.bg)
	}
	if s.bold {
		parts = append(parts, "font-weight:bold")
	}
	if s.italic {
		parts = append(parts, "font-style:italic")
	}
	if s.underline {
		parts = append(parts, "text-decoration:underline")
	}
	return strings.Join(parts, ";")
}

// ANSIToHTML escapes text for HTML and converts SGR color sequences into
// styled spans. Other escape sequences are dropped.
func ANSIToHTML(text string) string {
	var (
		b     strings.Builder
		state sgrState
		open  bool
	)

	writeText := func(segment string) {
		b.WriteString(html.EscapeString(StripANSI(segment)))
	}

	last := 0
	for _, loc := range sgrSequence.FindAllStringSubmatchIndex(text, -1) {
		writeText(text[last:loc[0]])
		last = loc[1]

		state = applySGR(state, text[loc[2]:loc[3]])
		if open {
			b.WriteString("</span>")
			open = false
		}
		if style := state.style(); style != "" {
			fmt.Fprintf(&b, `<span style="%s">`, style)
			open = true
		}
	}
	writeText(text[last:])
	if open {
		b.WriteString("</span>")
	}
	return b.String()
}

func applySGR(s sgrState, params string) sgrState {
	if params == "" {
		return sgrState{}
	}
	codes := strings.Split(params, ";")
	for i := 0; i < len(codes); i++ {
		n, err := strconv.Atoi(codes[i])
		if err != nil {
			continue
		}
		switch {
		case n == 0:
			s = sgrState{}
		case n == 1:
			s.bold = true
		case n == 3:
			s.italic = true
		case n == 4:
			s.underline = true
		case n == 22:
			s.bold = false
		case n == 23:
			s.italic = false
		case n == 24:
			s.underline = false
		case n >= 30 && n <= 37:
			s.fg = basePalette[n-30]
		case n >= 90 && n <= 97:
			s.fg = basePalette[n-90+8]
		case n == 39:
			s.fg = ""
		case n >= 40 && n <= 47:
			s.bg = basePalette[n-40]
		case n >= 100 && n <= 107:
			s.bg = basePalette[n-100+8]
		case n == 49:
			s.bg = ""
		case n == 38 || n == 48:
			color, used := extendedColor(codes[i+1:])
			i += used
			if color == "" {
				continue
			}
			if n == 38 {
				s.fg = color
			} else {
				s.bg = color
			}
		}
	}
	return s
}

// extendedColor parses the tail of a 38/48 sequence: "5;n" or "2;r;g;b".
// It returns the color and how many parameters it consumed.
func extendedColor(args []string) (string, int) {
	if len(args) == 0 {
		return "", 0
	}
	switch args[0] {
	case "5":
		if len(args) < 2 {
			return "", 1
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 || n > 255 {
			return "", 2
		}
		return xterm256(n), 2
	case "2":
		if len(args) < 4 {
			return "", len(args)
		}
		var rgb [3]int
		for i := range rgb {
			v, err := strconv.Atoi(args[i+1])
			if err != nil || v < 0 || v > 255 {
				return "", 4
			}
			rgb[i] = v
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), 4
	default:
		return "", 1
	}
}

func xterm256(n int) string {
	switch {
	case n < 16:
		return basePalette[n]
	case n < 232:
		n -= 16
		levels := [6]int{0, 95, 135, 175, 215, 255}
		return fmt.Sprintf("#%02x%02x%02x", levels[n/36], levels[(n/6)%6], levels[n%6])
	default:
		v := 8 + (n-232)*10
		return fmt.Sprintf("#%02x%02x%02x", v, v, v)
	}
}
