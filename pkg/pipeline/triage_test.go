package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySmallTalk(t *testing.T) {
	tests := []struct {
		question  string
		smallTalk bool
	}{
		{"hi", true},
		{"Hello there", true},
		{"HEY", true},
		{"thanks a lot", true},
		{"thank you", true},
		{"who are you", true},
		{"what is your name?", true},
		{"bye", true},
		{"What does Indium do?", false},
		{"Tell me about the testing services", false},
		{"this is a thesis about history", false}, // "hi" must match whole words only
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.smallTalk, Classify(tt.question).SmallTalk)
		})
	}
}

func TestClassifyStyle(t *testing.T) {
	tests := []struct {
		question string
		style    Style
	}{
		{"What is Indium?", StyleBrief},
		{"  What is Indium?  ", StyleBrief},
		{"one two three four five", StyleBrief},
		{"one two three four five six", StyleDetailed},
		{"Tell me everything about your digital engineering services", StyleDetailed},
		{"", StyleBrief},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.style, Classify(tt.question).Style)
		})
	}
}
