package deprecation_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/coremigration/internal/deprecation"
)

var testNotice = deprecation.Notice{
	OldPath: "app/src/main/java/com/example/pack1/A.kt",
	NewPath: "libmodule/src/main/java/com/example/libmodule/pack1/A.kt",
}

func indentBlock(block string, indentation string) string {
	lines := strings.Split(block, "\n")
	for index := range lines {
		lines[index] = indentation + lines[index]
	}
	return strings.Join(lines, "\n")
}

func TestMark(t *testing.T) {
	block := deprecation.Block(testNotice)

	testCases := []struct {
		name              string
		input             string
		expected          string
		expectedInserted  int
		expectedFirstLine int
	}{
		{
			name:              "ClassAfterPackage",
			input:             "package com.example\n\nclass A {\n}\n",
			expected:          "package com.example\n\n" + block + "\nclass A {\n}\n",
			expectedInserted:  1,
			expectedFirstLine: 2,
		},
		{
			name:              "ExtensionFunctionAfterImports",
			input:             "import kotlin.math.max\nfun String.shout(): String = uppercase()",
			expected:          "import kotlin.math.max\n" + block + "\nfun String.shout(): String = uppercase()",
			expectedInserted:  1,
			expectedFirstLine: 1,
		},
		{
			name:              "IndentedDeclaration",
			input:             "package a\n    internal data class B(val x: Int)\n",
			expected:          "package a\n" + indentBlock(block, "    ") + "\n    internal data class B(val x: Int)\n",
			expectedInserted:  1,
			expectedFirstLine: 1,
		},
		{
			name:              "AlreadyDeprecated",
			input:             "package a\n@Deprecated(\"old\")\nclass A\nobject B\n",
			expected:          "package a\n@Deprecated(\"old\")\nclass A\n" + block + "\nobject B\n",
			expectedInserted:  1,
			expectedFirstLine: 3,
		},
		{
			name:              "NoHeader",
			input:             "class A\n",
			expected:          "class A\n",
			expectedInserted:  0,
			expectedFirstLine: -1,
		},
		{
			name:              "NonDeclarationLines",
			input:             "package a\nval x = 1\nfun top() = Unit\n",
			expected:          "package a\nval x = 1\nfun top() = Unit\n",
			expectedInserted:  0,
			expectedFirstLine: -1,
		},
		{
			name:              "CarriageReturnLineFeed",
			input:             "package a\r\nopen class A\r\n",
			expected:          "package a\r\n" + strings.ReplaceAll(block, "\n", "\r\n") + "\r\nopen class A\r\n",
			expectedInserted:  1,
			expectedFirstLine: 1,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := deprecation.Mark(testCase.input, testNotice)
			if difference := cmp.Diff(testCase.expected, result.Content); difference != "" {
				t.Fatalf("unexpected content (-want +got):\n%s", difference)
			}
			require.Equal(t, testCase.expectedInserted, result.Inserted)
			require.Equal(t, testCase.expectedFirstLine, result.FirstLine)
		})
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	first := deprecation.Mark("package a\n\nabstract class A\n", testNotice)
	require.Equal(t, 1, first.Inserted)

	second := deprecation.Mark(first.Content, testNotice)
	require.Zero(t, second.Inserted)
	require.Equal(t, first.Content, second.Content)
}

func TestIsDeclaration(t *testing.T) {
	testCases := []struct {
		line     string
		expected bool
	}{
		{line: "class A", expected: true},
		{line: "public enum class Color {", expected: true},
		{line: "private object Holder", expected: true},
		{line: "interface Repository<T> {", expected: true},
		{line: "fun List<Int>.total(): Int {", expected: true},
		{line: "fun main() {", expected: false},
		{line: "val klass = 1", expected: false},
		{line: "// class in a comment", expected: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.line, func(t *testing.T) {
			require.Equal(t, testCase.expected, deprecation.IsDeclaration(testCase.line))
		})
	}
}

func TestEscalate(t *testing.T) {
	marked := deprecation.Mark("package a\nclass A\n", testNotice).Content

	escalated, changed := deprecation.Escalate(marked)
	require.True(t, changed)
	require.Contains(t, escalated, "level = DeprecationLevel.ERROR")
	require.Contains(t, escalated, "is deprecated and must not be used. Please instead use ")
	require.NotContains(t, escalated, "DeprecationLevel.WARNING")
	require.NotContains(t, escalated, "has been deprecated and copied to")

	unchanged, changedAgain := deprecation.Escalate(escalated)
	require.False(t, changedAgain)
	require.Equal(t, escalated, unchanged)
}

func TestRewritePackage(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		packageName     string
		expected        string
		expectedChanged bool
	}{
		{
			name:            "Replace",
			input:           "// header\npackage com.example.app\n\nclass A\n",
			packageName:     "com.example.lib",
			expected:        "// header\npackage com.example.lib\n\nclass A\n",
			expectedChanged: true,
		},
		{
			name:            "Unchanged",
			input:           "package com.example.lib\r\nclass A\r\n",
			packageName:     "com.example.lib",
			expected:        "package com.example.lib\r\nclass A\r\n",
			expectedChanged: false,
		},
		{
			name:            "RemoveForDefaultPackage",
			input:           "package com.example.app\nclass A\n",
			packageName:     "",
			expected:        "class A\n",
			expectedChanged: true,
		},
		{
			name:            "MissingPackageLine",
			input:           "class A\n",
			packageName:     "com.example",
			expected:        "class A\n",
			expectedChanged: false,
		},
		{
			name:            "OnlyFirstPackageLine",
			input:           "package one\npackage two\n",
			packageName:     "three",
			expected:        "package three\npackage two\n",
			expectedChanged: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rewritten, changed := deprecation.RewritePackage(testCase.input, testCase.packageName)
			require.Equal(t, testCase.expectedChanged, changed)
			if difference := cmp.Diff(testCase.expected, rewritten); difference != "" {
				t.Fatalf("unexpected content (-want +got):\n%s", difference)
			}
		})
	}
}
