package pathmap_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/coremigration/internal/pathmap"
)

func TestProjectRelativePath(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "ModuleSourceFile",
			input:    "/Users/dev/nowinandroid/build-logic/convention/src/main/kotlin/AndroidApplicationComposeConventionPlugin.kt",
			expected: "convention/src/main/kotlin/AndroidApplicationComposeConventionPlugin.kt",
		},
		{
			name:     "FirstSourceMarkerWins",
			input:    "/home/dev/project/app/src/main/java/com/example/src/Util.kt",
			expected: "app/src/main/java/com/example/src/Util.kt",
		},
		{
			name:     "MarkerAtRoot",
			input:    "src/main/kotlin/A.kt",
			expected: "src/main/kotlin/A.kt",
		},
		{
			name:     "NoMarker",
			input:    "/home/dev/project/README.md",
			expected: "",
		},
	}

	mapper := pathmap.NewMapper(pathmap.DefaultConfiguration())
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, mapper.ProjectRelativePath(testCase.input))
		})
	}
}

func TestPackageForPath(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedPackage string
		expectedOK      bool
	}{
		{
			name:            "JavaRoot",
			input:           "/repo/libmodule/src/main/java/com/example/libmodule/test/pack1/A.kt",
			expectedPackage: "com.example.libmodule.test.pack1",
			expectedOK:      true,
		},
		{
			name:            "KotlinRoot",
			input:           "/repo/core/src/main/kotlin/com/example/core/B.kt",
			expectedPackage: "com.example.core",
			expectedOK:      true,
		},
		{
			name:            "DefaultPackage",
			input:           "/repo/core/src/main/kotlin/C.kt",
			expectedPackage: "",
			expectedOK:      true,
		},
		{
			name:            "PackageNamedAfterJavaRoot",
			input:           "/p/lib/src/main/java/com/example/java/Util.kt",
			expectedPackage: "com.example.java",
			expectedOK:      true,
		},
		{
			name:            "PackageNamedAfterKotlinRoot",
			input:           "lib/src/main/kotlin/com/example/kotlin/Util.kt",
			expectedPackage: "com.example.kotlin",
			expectedOK:      true,
		},
		{
			name:            "PackageContainingSourceLayout",
			input:           "app/src/main/java/com/example/src/test/java/Util.kt",
			expectedPackage: "com.example.src.test.java",
			expectedOK:      true,
		},
		{
			name:            "LastMarkerWithoutSourceRoot",
			input:           "/repo/generated/java/com/example/kotlin/Gen.kt",
			expectedPackage: "",
			expectedOK:      true,
		},
		{
			name:       "UnsupportedExtension",
			input:      "/repo/core/src/main/kotlin/com/example/notes.md",
			expectedOK: false,
		},
		{
			name:       "NoPackageRoot",
			input:      "/repo/core/scripts/D.kt",
			expectedOK: false,
		},
	}

	mapper := pathmap.NewMapper(pathmap.Configuration{})
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			packageName, ok := mapper.PackageForPath(testCase.input)
			require.Equal(t, testCase.expectedOK, ok)
			require.Equal(t, testCase.expectedPackage, packageName)
		})
	}
}

func TestPackageForPathHonorsConfiguredExtensions(t *testing.T) {
	mapper := pathmap.NewMapper(pathmap.Configuration{SourceExtensions: []string{".kt", " .java "}})

	packageName, ok := mapper.PackageForPath("/repo/core/src/main/java/com/example/E.java")
	require.True(t, ok)
	require.Equal(t, "com.example", packageName)
}

func TestDestinationPath(t *testing.T) {
	testCases := []struct {
		name        string
		oldPath     string
		destination string
		depth       int
		expected    string
	}{
		{
			name:        "SelectedFile",
			oldPath:     "/repo/app/src/main/java/com/example/pack1/A.kt",
			destination: "/repo/lib/src/main/java/com/example/lib",
			depth:       0,
			expected:    filepath.Join("/repo/lib/src/main/java/com/example/lib", "A.kt"),
		},
		{
			name:        "ChildOfSelectedDirectory",
			oldPath:     "/repo/app/src/main/java/com/example/pack1/A.kt",
			destination: "/repo/lib/src/main/java/com/example/lib",
			depth:       1,
			expected:    filepath.Join("/repo/lib/src/main/java/com/example/lib", "pack1", "A.kt"),
		},
		{
			name:        "NestedDirectory",
			oldPath:     "/repo/app/src/main/java/com/example/pack1/sub/B.kt",
			destination: "/repo/lib",
			depth:       2,
			expected:    filepath.Join("/repo/lib", "pack1", "sub", "B.kt"),
		},
		{
			name:        "DepthBeyondSegments",
			oldPath:     "a/B.kt",
			destination: "/repo/lib",
			depth:       5,
			expected:    filepath.Join("/repo/lib", "a", "B.kt"),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, pathmap.DestinationPath(testCase.oldPath, testCase.destination, testCase.depth))
		})
	}
}
