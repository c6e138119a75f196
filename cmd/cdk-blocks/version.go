package main

import (
	"fmt"
	"runtime/debug"
)

// version is stamped by release builds: -ldflags "-X main.version=v1.0.0"
var version = ""

const cdkModule = "github.com/aws/aws-cdk-go/awscdk/v2"

// resolveVersion prefers the stamped version, then the module version of a
// `go install pkg@version` build, then "dev" with the short VCS revision
// when the build recorded one.
func resolveVersion(stamped string, info *debug.BuildInfo) string {
	if stamped != "" {
		return stamped
	}
	if info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return "dev+" + s.Value[:7]
		}
	}
	return "dev"
}

// cdkVersion is the aws-cdk-go module linked into the binary, or "" when
// build info is unavailable.
func cdkVersion(info *debug.BuildInfo) string {
	if info == nil {
		return ""
	}
	for _, dep := range info.Deps {
		if dep.Path == cdkModule {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return ""
}

func versionLine() string {
	info, _ := debug.ReadBuildInfo()
	line := "cdk-blocks " + resolveVersion(version, info)
	if cdk := cdkVersion(info); cdk != "" {
		line += fmt.Sprintf(" (aws-cdk-go %s)", cdk)
	}
	return line
}
