package toolchain

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/huanfeng/androidgen-cli/internal/errors"
)

// Java class files carry a major version that is the JDK release plus 44 (52 = JDK 8,
// 61 = JDK 17).
const classFileOffset = 44

var classFileMismatch = regexp.MustCompile(`(?s)class file version (\d+)(?:\.\d+)?.*?up to (\d+)(?:\.\d+)?`)

// ClassFileToJDK maps a class file major version to the JDK release that produces it
func ClassFileToJDK(classVersion int) int {
	return classVersion - classFileOffset
}

// JDKMismatch is decoded from an UnsupportedClassVersionError
type JDKMismatch struct {
	Required  int
	Installed int
}

// DetectJDKMismatch looks for a class-file-version error in tool output
func DetectJDKMismatch(output string) (*JDKMismatch, bool) {
	m := classFileMismatch.FindStringSubmatch(output)
	if m == nil {
		return nil, false
	}
	required, err1 := strconv.Atoi(m[1])
	installed, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return nil, false
	}
	return &JDKMismatch{
		Required:  ClassFileToJDK(required),
		Installed: ClassFileToJDK(installed),
	}, true
}

// Error converts the mismatch into a toolchain error for the given tool
func (m *JDKMismatch) Error(toolPath string) *errors.ToolError {
	return errors.NewToolchainError("JDK_MISMATCH",
		fmt.Sprintf("%s requires JDK %d, have JDK %d", toolPath, m.Required, m.Installed)).
		WithContext("required_jdk", strconv.Itoa(m.Required)).
		WithContext("installed_jdk", strconv.Itoa(m.Installed)).
		WithSuggestion(fmt.Sprintf("Install JDK %d or newer and register it with 'androidgen android-register --set-value java.home=<dir>'", m.Required))
}
