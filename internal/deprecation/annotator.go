package deprecation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	packageLinePrefixConstant          = "package "
	importLinePrefixConstant           = "import "
	deprecatedAnnotationPrefixConstant = "@Deprecated"
	lineFeedConstant                   = "\n"
	carriageReturnLineFeedConstant     = "\r\n"
	indentationUnitConstant            = "    "
	indentationWidthConstant           = 4
	packageLineTemplateConstant        = "package %s"
	warningLevelConstant               = "DeprecationLevel.WARNING"
	errorLevelConstant                 = "DeprecationLevel.ERROR"
	copiedPhraseConstant               = "has been deprecated and copied to"
	forbiddenPhraseConstant            = "is deprecated and must not be used. Please instead use"
	noInsertionLineConstant            = -1
	declarationPatternConstant         = `^\s*(?:public|protected|private|internal)*\s*(?:(?:abstract|enum|open|data)*\s*(?:class|interface|object)\s+\w+.*|(?:fun)+\s*(?:.*\..*\().*)$`
	leadingWhitespacePatternConstant   = `^\s*`
	deprecationBlockTemplateConstant   = `@Deprecated(
    message = "This file " +
            "%s " +
            "has been deprecated and copied to " +
            "%s. " +
            "It will completely be removed and replaced with the Core implementation in the next release. " +
            "If you modify the code, please make sure they are in sync.",
    level = DeprecationLevel.WARNING
)`
)

var (
	declarationPattern       = regexp.MustCompile(declarationPatternConstant)
	leadingWhitespacePattern = regexp.MustCompile(leadingWhitespacePatternConstant)
)

// Notice names the deprecated file and its replacement, both relative to the project root.
type Notice struct {
	OldPath string
	NewPath string
}

// MarkResult describes the outcome of Mark.
type MarkResult struct {
	Content string
	// Inserted counts the deprecation blocks added.
	Inserted int
	// FirstLine is the zero-based line of the first inserted block, or -1.
	FirstLine int
}

// Block renders the deprecation block for a notice without indentation.
func Block(notice Notice) string {
	return fmt.Sprintf(deprecationBlockTemplateConstant, notice.OldPath, notice.NewPath)
}

// IsDeclaration reports whether a line opens a class, interface, object or extension function.
func IsDeclaration(line string) bool {
	return declarationPattern.MatchString(line)
}

// Mark inserts the deprecation block before every top-level declaration that follows the
// file header and is not already annotated.
func Mark(content string, notice Notice) MarkResult {
	lines := splitLines(content)
	lineEnding := detectLineEnding(content)
	blockLines := strings.Split(Block(notice), lineFeedConstant)

	output := make([]sourceLine, 0, len(lines)+len(blockLines))
	result := MarkResult{FirstLine: noInsertionLineConstant}
	headerSeen := false
	pendingDeprecated := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line.text, packageLinePrefixConstant), strings.HasPrefix(line.text, importLinePrefixConstant):
			headerSeen = true
		case strings.HasPrefix(strings.TrimSpace(line.text), deprecatedAnnotationPrefixConstant):
			pendingDeprecated = true
		case IsDeclaration(line.text):
			if headerSeen && !pendingDeprecated {
				if result.Inserted == 0 {
					result.FirstLine = len(output)
				}
				indentation := strings.Repeat(indentationUnitConstant, indentationLevels(line.text))
				for _, blockLine := range blockLines {
					output = append(output, sourceLine{text: indentation + blockLine, ending: lineEnding})
				}
				result.Inserted++
			}
			pendingDeprecated = false
		}
		output = append(output, line)
	}

	if result.Inserted == 0 {
		result.Content = content
		return result
	}
	result.Content = joinLines(output)
	return result
}

// Escalate turns WARNING deprecation blocks into ERROR blocks that direct readers to the
// replacement. The boolean reports whether the content changed.
func Escalate(content string) (string, bool) {
	escalated := strings.ReplaceAll(content, warningLevelConstant, errorLevelConstant)
	escalated = strings.ReplaceAll(escalated, copiedPhraseConstant, forbiddenPhraseConstant)
	return escalated, escalated != content
}

// RewritePackage replaces the first package declaration. An empty package name removes
// the declaration. Content without a package line is returned unchanged.
func RewritePackage(content string, packageName string) (string, bool) {
	lines := splitLines(content)
	for index, line := range lines {
		if !strings.HasPrefix(line.text, packageLinePrefixConstant) {
			continue
		}
		if len(packageName) == 0 {
			remaining := append(append([]sourceLine{}, lines[:index]...), lines[index+1:]...)
			return joinLines(remaining), true
		}
		replacement := fmt.Sprintf(packageLineTemplateConstant, packageName)
		if replacement == line.text {
			return content, false
		}
		lines[index].text = replacement
		return joinLines(lines), true
	}
	return content, false
}

type sourceLine struct {
	text   string
	ending string
}

func splitLines(content string) []sourceLine {
	if len(content) == 0 {
		return nil
	}
	rawLines := strings.SplitAfter(content, lineFeedConstant)
	lines := make([]sourceLine, 0, len(rawLines))
	for _, rawLine := range rawLines {
		if len(rawLine) == 0 {
			continue
		}
		switch {
		case strings.HasSuffix(rawLine, carriageReturnLineFeedConstant):
			lines = append(lines, sourceLine{text: strings.TrimSuffix(rawLine, carriageReturnLineFeedConstant), ending: carriageReturnLineFeedConstant})
		case strings.HasSuffix(rawLine, lineFeedConstant):
			lines = append(lines, sourceLine{text: strings.TrimSuffix(rawLine, lineFeedConstant), ending: lineFeedConstant})
		default:
			lines = append(lines, sourceLine{text: rawLine})
		}
	}
	return lines
}

func joinLines(lines []sourceLine) string {
	var builder strings.Builder
	for _, line := range lines {
		builder.WriteString(line.text)
		builder.WriteString(line.ending)
	}
	return builder.String()
}

func detectLineEnding(content string) string {
	if strings.Contains(content, carriageReturnLineFeedConstant) {
		return carriageReturnLineFeedConstant
	}
	return lineFeedConstant
}

func indentationLevels(line string) int {
	return len(leadingWhitespacePattern.FindString(line)) / indentationWidthConstant
}
