package gitscript

import "strings"

const (
	gitCheckoutSubcommandConstant      = "checkout"
	gitNewBranchFlagConstant           = "-b"
	gitMoveSubcommandConstant          = "mv"
	gitAddSubcommandConstant           = "add"
	gitCommitSubcommandConstant        = "commit"
	gitMessageFlagConstant             = "-m"
	gitParentRevisionConstant          = "HEAD~"
	gitMergeSubcommandConstant         = "merge"
	gitNoFastForwardFlagConstant       = "--no-ff"
	gitBranchSubcommandConstant        = "branch"
	gitDeleteFlagConstant              = "--delete"
	gitPathSeparatorArgumentConstant   = "--"
	commitMessageLineSeparatorConstant = "\n"

	createBranchStepNameConstant = "create branch"
	moveStepNameConstant         = "move"
	stageStepNameConstant        = "stage"
	commitStepNameConstant       = "commit"
	restoreStepNameConstant      = "restore from parent"
	switchBranchStepNameConstant = "switch branch"
	mergeStepNameConstant        = "merge"
	deleteBranchStepNameConstant = "delete branch"
)

// CreateBranchStep checks out a new branch.
func CreateBranchStep(branchName string) Step {
	return Step{
		Name:      createBranchStepNameConstant,
		Arguments: []string{gitCheckoutSubcommandConstant, gitNewBranchFlagConstant, branchName},
	}
}

// MoveStep renames a tracked file.
func MoveStep(oldPath string, newPath string) Step {
	return Step{
		Name:      moveStepNameConstant,
		Arguments: []string{gitMoveSubcommandConstant, gitPathSeparatorArgumentConstant, oldPath, newPath},
	}
}

// StageStep adds the given paths to the index.
func StageStep(paths ...string) Step {
	arguments := []string{gitAddSubcommandConstant, gitPathSeparatorArgumentConstant}
	return Step{Name: stageStepNameConstant, Arguments: append(arguments, paths...)}
}

// CommitStep records a commit with one message line per entry. When paths are given only
// those paths are committed and anything else already staged stays in the index.
func CommitStep(messageLines []string, paths ...string) Step {
	arguments := []string{gitCommitSubcommandConstant, gitMessageFlagConstant, strings.Join(messageLines, commitMessageLineSeparatorConstant)}
	if len(paths) > 0 {
		arguments = append(append(arguments, gitPathSeparatorArgumentConstant), paths...)
	}
	return Step{Name: commitStepNameConstant, Arguments: arguments}
}

// RestoreFromParentStep recreates paths from the parent of HEAD.
func RestoreFromParentStep(paths ...string) Step {
	arguments := []string{gitCheckoutSubcommandConstant, gitParentRevisionConstant, gitPathSeparatorArgumentConstant}
	return Step{Name: restoreStepNameConstant, Arguments: append(arguments, paths...)}
}

// SwitchBranchStep checks out an existing branch.
func SwitchBranchStep(branchName string) Step {
	return Step{
		Name:      switchBranchStepNameConstant,
		Arguments: []string{gitCheckoutSubcommandConstant, branchName},
	}
}

// MergeNoFastForwardStep merges branchName into the current branch with a merge commit.
func MergeNoFastForwardStep(branchName string, message string) Step {
	return Step{
		Name:      mergeStepNameConstant,
		Arguments: []string{gitMergeSubcommandConstant, gitNoFastForwardFlagConstant, branchName, gitMessageFlagConstant, message},
	}
}

// DeleteBranchStep removes a merged local branch.
func DeleteBranchStep(branchName string) Step {
	return Step{
		Name:      deleteBranchStepNameConstant,
		Arguments: []string{gitBranchSubcommandConstant, gitDeleteFlagConstant, branchName},
	}
}

// ActionStep wraps in-process work.
func ActionStep(name string, action Action) Step {
	return Step{Name: name, Action: action}
}
