package prompt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"

	clierr "github.com/ggonzalez94/near-cli/internal/errors"
	"github.com/stretchr/testify/require"
)

var numberField = Field[int]{
	Name:  "number",
	Label: "Enter a number",
	Parse: func(raw string) (int, error) { return strconv.Atoi(raw) },
}

func TestResolveSuppliedNeverPrompts(t *testing.T) {
	p := NewScripted()
	args := NewArgs([]string{"42"})
	v, err := Resolve(p, args, numberField)
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.Empty(t, p.Prompts)
}

func TestResolveInvalidSuppliedIsUsageError(t *testing.T) {
	_, err := Resolve(NewScripted(), NewArgs([]string{"x"}), numberField)
	require.True(t, clierr.Is(err, clierr.CodeUsage))
	require.ErrorContains(t, err, `invalid number "x"`)
}

func TestResolvePromptsUntilParseable(t *testing.T) {
	p := NewScripted("abc", "", "7")
	v, err := Resolve(p, NewArgs(nil), numberField)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, []string{"abc", ""}, p.Rejected)
	require.Len(t, p.Prompts, 3)
}

func TestResolveAbortIsCoded(t *testing.T) {
	_, err := Resolve(NewScripted(), NewArgs(nil), numberField)
	require.True(t, clierr.Is(err, clierr.CodeAborted))
}

func colorMenu(built *[]string) Menu[string] {
	entry := func(tag, label string) Entry[string] {
		return Entry[string]{Tag: tag, Label: label, Build: func() (string, error) {
			*built = append(*built, tag)
			return tag, nil
		}}
	}
	return Menu[string]{
		Name:    "color",
		Label:   "Pick a color",
		Entries: []Entry[string]{entry("red", "Red things"), entry("blue", "Blue things")},
	}
}

func TestMenuChooseSuppliedTag(t *testing.T) {
	var built []string
	p := NewScripted()
	v, err := colorMenu(&built).Choose(p, NewArgs([]string{"BLUE"}))
	require.NoError(t, err)
	require.Equal(t, "blue", v)
	require.Equal(t, []string{"blue"}, built)
	require.Empty(t, p.Prompts)
}

func TestMenuChooseUnknownTag(t *testing.T) {
	var built []string
	_, err := colorMenu(&built).Choose(NewScripted(), NewArgs([]string{"green"}))
	require.True(t, clierr.Is(err, clierr.CodeUsage))
	require.ErrorContains(t, err, "red|blue")
	require.Empty(t, built)
}

func TestMenuChooseBySelection(t *testing.T) {
	var built []string
	p := NewScripted("Red things")
	v, err := colorMenu(&built).Choose(p, NewArgs(nil))
	require.NoError(t, err)
	require.Equal(t, "red", v)
	require.Equal(t, []string{"Pick a color"}, p.Prompts)
}

func TestSingleEntryMenuAutoSelects(t *testing.T) {
	m := Menu[string]{Name: "mode", Entries: []Entry[string]{{Tag: "network", Build: func() (string, error) { return "online", nil }}}}

	args := NewArgs([]string{"network", "testnet"})
	v, err := m.Choose(Disabled{}, args)
	require.NoError(t, err)
	require.Equal(t, "online", v)
	require.Equal(t, []string{"testnet"}, args.Remaining())

	args = NewArgs([]string{"testnet"})
	_, err = m.Choose(Disabled{}, args)
	require.NoError(t, err)
	require.Equal(t, []string{"testnet"}, args.Remaining())
}

func TestDisabledPrompterReportsMissingField(t *testing.T) {
	_, err := Resolve(Disabled{}, NewArgs(nil), numberField)
	require.True(t, clierr.Is(err, clierr.CodeUsage))
	require.ErrorContains(t, err, "Enter a number")
}

func TestLinesPrompterRetriesAndSelects(t *testing.T) {
	var out bytes.Buffer
	p := NewLines(strings.NewReader("nope\n12\n\n"), &out)

	v, err := Resolve[int](p, NewArgs(nil), numberField)
	require.NoError(t, err)
	require.Equal(t, 12, v)
	require.Contains(t, out.String(), "invalid input")

	idx, err := p.Select("Pick", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Contains(t, out.String(), "  2) b")

	_, err = p.Input("more", nil)
	require.ErrorIs(t, err, ErrAborted)
}

func ExampleResolve() {
	v, _ := Resolve(Disabled{}, NewArgs([]string{"3"}), numberField)
	fmt.Println(v)
	// Output: 3
}
