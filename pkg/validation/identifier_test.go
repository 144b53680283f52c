package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdentifier(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "simple name", input: "new_input_1", valid: true},
		{name: "underscore prefix", input: "_hidden", valid: true},
		{name: "single letter", input: "x", valid: true},
		{name: "leading digit", input: "1abc", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "contains dash", input: "my-input", valid: false},
		{name: "contains space", input: "my input", valid: false},
		{name: "reserved word class", input: "class", valid: false},
		{name: "reserved word lambda", input: "lambda", valid: false},
		{name: "reserved word None", input: "None", valid: false},
		{name: "keyword as prefix is fine", input: "class_name", valid: true},
		{name: "unicode letter rejected", input: "größe", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidIdentifier(tc.input))
		})
	}
}

func TestValidIdentifier_RejectsEveryKeyword(t *testing.T) {
	for keyword := range pythonKeywords {
		assert.False(t, ValidIdentifier(keyword), "keyword %q must be rejected", keyword)
	}
}

func TestValidOptionalIdentifier(t *testing.T) {
	assert.True(t, ValidOptionalIdentifier(""))
	assert.True(t, ValidOptionalIdentifier("ok_name"))
	assert.False(t, ValidOptionalIdentifier("1bad"))
}

func TestValidFreeText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "plain words", input: "Volume Flow", valid: true},
		{name: "diacritics", input: "Größe äöü", valid: true},
		{name: "allowed punctuation", input: "a.b (v2) x/y = z-1 'q'", valid: true},
		{name: "empty", input: "", valid: true},
		{name: "brackets", input: "a[0]", valid: false},
		{name: "colon", input: "a:b", valid: false},
		{name: "semicolon", input: "a;b", valid: false},
		{name: "currency", input: "5€", valid: false},
		{name: "comparison", input: "a<b", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, ValidFreeText(tc.input))
		})
	}
}
