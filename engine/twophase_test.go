package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/ablfmt/abl"
)

const longName = "longVariableNameForTheTwoPhaseTest"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want map[int]bool
	}{
		{
			name: "triggers",
			src:  longName + ` = "a" + (if a > 1 then "b" else "c") + "d".`,
			want: map[int]bool{0: true},
		},
		{
			name: "second statement",
			src:  "x = 1.\n" + longName + ` = "a" + (if a > 1 then "b" else "c").`,
			want: map[int]bool{1: true},
		},
		{
			name: "inside assign",
			src:  "ASSIGN " + longName + ` = "a" + (if a > 1 then "b" else "c").`,
			want: map[int]bool{0: true},
		},
		{
			name: "equals too far left",
			src:  `x = "a" + (if a > 1 then "b" else "c").`,
			want: map[int]bool{},
		},
		{
			name: "no comparison",
			src:  longName + ` = "a" + (if a then "b" else "c").`,
			want: map[int]bool{},
		},
		{
			name: "no ternary",
			src:  longName + ` = "a" + (a > 1).`,
			want: map[int]bool{},
		},
		{
			name: "not an additive operand",
			src:  longName + ` = f((if a > 1 then "b" else "c")).`,
			want: map[int]bool{},
		},
		{
			name: "parenthesis spans lines",
			src:  longName + " = \"a\" + (if a > 1\n then \"b\" else \"c\").",
			want: map[int]bool{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(abl.Parse(tt.src)))
		})
	}
}

func TestTwoPhaseFormatting(t *testing.T) {
	src := longName + ` =  "a" +  (if a >  1 then "b" else "c") + "d".` + "\ny  =  1."
	want := longName + ` = "a" + (if a > 1 then "b" else "c") + "d".` + "\ny = 1."

	e := newEngine(nil)
	got := formatOnce(t, e, src)
	assert.Equal(t, want, got)
	assert.Equal(t, got, formatOnce(t, e, got))

	m, err := e.CompareTexts(src, got)
	assert.NoError(t, err)
	assert.Nil(t, m)
}
