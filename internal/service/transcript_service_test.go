package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{name: "trailing question mark", text: "the budget is approved, right?", want: true},
		{name: "interrogative starter", text: "what time does the demo start", want: true},
		{name: "auxiliary starter", text: "does anyone have the link", want: true},
		{name: "statement", text: "the demo starts at noon", want: false},
		{name: "empty", text: "   ", want: false},
		{name: "question word mid-sentence", text: "I wonder what the plan is", want: false},
		{name: "starter with comma", text: "So, what is the plan", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQuestion(tt.text))
		})
	}
}
