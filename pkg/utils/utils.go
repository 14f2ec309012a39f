package utils

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora/v3"
)

type Style func(arg interface{}) aurora.Value

// Styler renders terminal output. With colour off every method returns its argument's plain text.
type Styler struct {
	au aurora.Aurora

	InfoStyle, FailStyle, OkStyle, WarnStyle Style
	AddrStyle, VerbStyle, NounStyle          Style
	BrightStyle                              Style
}

func NewStyler(colour bool) Styler {
	au := aurora.NewAurora(colour)
	return Styler{
		au:          au,
		InfoStyle:   au.BrightBlack,
		FailStyle:   au.Red,
		OkStyle:     au.Green,
		WarnStyle:   au.Yellow,
		AddrStyle:   au.Blue,
		VerbStyle:   au.Magenta,
		NounStyle:   au.Cyan,
		BrightStyle: au.BrightWhite,
	}
}

func (s Styler) Info(a interface{}) string   { return s.InfoStyle(a).String() }
func (s Styler) Fail(a interface{}) string   { return s.FailStyle(a).String() }
func (s Styler) Ok(a interface{}) string     { return s.OkStyle(a).String() }
func (s Styler) Warn(a interface{}) string   { return s.WarnStyle(a).String() }
func (s Styler) Addr(a interface{}) string   { return s.AddrStyle(a).String() }
func (s Styler) Verb(a interface{}) string   { return s.VerbStyle(a).String() }
func (s Styler) Noun(a interface{}) string   { return s.NounStyle(a).String() }
func (s Styler) Bright(a interface{}) string { return s.BrightStyle(a).String() }

func (s Styler) Number(n int) string {
	return s.Bright(strconv.Itoa(n))
}

func (s Styler) YesNo(test bool) string {
	if test {
		return s.au.Bold(s.au.Green("yes")).String()
	}
	return s.au.Bold(s.au.Red("no")).String()
}

func (s Styler) OptionalString(str string, style Style) string {
	if str == "" {
		return s.Info("<none>")
	}
	return style(str).String()
}

func (s Styler) List(ss []string, style Style) string {
	if len(ss) == 0 {
		return s.Info("<none>")
	}
	var styled []string
	for _, str := range ss {
		styled = append(styled, style(str).String())
	}
	return strings.Join(styled, ", ")
}

// Status colours an HTTP status code by class. Codes that couldn't be parsed are shown as unknown.
func (s Styler) Status(code int) string {
	switch {
	case code < 0:
		return s.Info("<unknown>")
	case code < 400:
		return s.Ok(code)
	case code < 500:
		return s.Warn(code)
	default:
		return s.Fail(code)
	}
}

func (s Styler) Banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Bright(fmt.Sprintf("== %s ==", title)))
	fmt.Fprintln(w)
}

func (s Styler) PrintWarn(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", s.au.Bold(s.au.Yellow("Warning:")), msg)
}

func (s Styler) PrintErr(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", s.au.Bold(s.au.Red("Error:")), err)
}

// Truncate cuts str to at most n runes, noting how many bytes were left off.
func (s Styler) Truncate(str string, n int) string {
	rs := []rune(str)
	if len(rs) <= n {
		return str
	}
	kept := string(rs[:n])
	return kept + s.Info(fmt.Sprintf("<%d bytes elided>", len(str)-len(kept)))
}
