package toolchain

import (
	"os/exec"
	"runtime"
)

// InstallHints returns platform specific installation suggestions for a tool
func InstallHints(tool string) []string {
	return installHints(tool, runtime.GOOS, detectPackageManagers())
}

func installHints(tool, goos string, managers []string) []string {
	var hints []string
	for _, pm := range managers {
		if cmd, ok := packageCommands[pm][tool]; ok {
			hints = append(hints, "Install with: "+cmd)
		}
	}
	if goos == "windows" {
		if cmd, ok := wingetCommands[tool]; ok {
			hints = append(hints, "Install with: "+cmd)
		}
	}
	if url, ok := downloadPages[tool]; ok {
		hints = append(hints, "Download from "+url)
	}
	return hints
}

var packageCommands = map[string]map[string]string{
	"apt": {
		"java":   "sudo apt-get install -y openjdk-17-jdk",
		"gradle": "sudo apt-get install -y gradle",
		"cmake":  "sudo apt-get install -y cmake",
		"ninja":  "sudo apt-get install -y ninja-build",
		"adb":    "sudo apt-get install -y adb",
	},
	"dnf": {
		"java":  "sudo dnf install -y java-17-openjdk-devel",
		"cmake": "sudo dnf install -y cmake",
		"ninja": "sudo dnf install -y ninja-build",
		"adb":   "sudo dnf install -y android-tools",
	},
	"pacman": {
		"java":   "sudo pacman -S --noconfirm jdk17-openjdk",
		"gradle": "sudo pacman -S --noconfirm gradle",
		"cmake":  "sudo pacman -S --noconfirm cmake",
		"ninja":  "sudo pacman -S --noconfirm ninja",
		"adb":    "sudo pacman -S --noconfirm android-tools",
	},
	"brew": {
		"java":   "brew install openjdk@17",
		"gradle": "brew install gradle",
		"cmake":  "brew install cmake",
		"ninja":  "brew install ninja",
		"adb":    "brew install android-platform-tools",
	},
}

var wingetCommands = map[string]string{
	"java":  "winget install Microsoft.OpenJDK.17",
	"cmake": "winget install Kitware.CMake",
	"ninja": "winget install Ninja-build.Ninja",
}

var downloadPages = map[string]string{
	"java":       "https://adoptium.net/",
	"gradle":     "https://gradle.org/releases/",
	"cmake":      "https://cmake.org/download/",
	"ninja":      "https://github.com/ninja-build/ninja/releases",
	"adb":        "https://developer.android.com/tools/releases/platform-tools",
	"sdkmanager": "https://developer.android.com/studio#command-line-tools-only",
}

func detectPackageManagers() []string {
	var found []string
	for _, pm := range []string{"apt", "dnf", "pacman", "brew"} {
		if _, err := exec.LookPath(pm); err == nil {
			found = append(found, pm)
		}
	}
	return found
}
