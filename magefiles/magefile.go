//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary   = "bin/modreport"
	outDir   = "Plots"
	dataset  = "testdata/dataset.csv"
	templDir = "./internal/templates"
)

// Generate runs templ generate for the HTML report components.
// Run it whenever a .templ file changes; the generated _templ.go files are committed.
func Generate() error {
	if _, err := exec.LookPath("templ"); err != nil {
		fmt.Println(">> templ not found; install with:")
		fmt.Println("   go install github.com/a-h/templ/cmd/templ@v0.3.1001")
		return err
	}
	fmt.Println(">> templ generate", templDir)
	return sh.Run("templ", "generate", templDir)
}

// Build generates templ output, tidies deps, then compiles to ./bin/modreport.
func Build() error {
	mg.Deps(Generate, Tidy)
	fmt.Println(">> Building modreport...")
	return sh.Run("go", "build", "-o", binary, "./cmd/modreport")
}

// Run builds then renders the report for $DATASET (default testdata/dataset.csv).
func Run() error {
	mg.Deps(Build)
	input := os.Getenv("DATASET")
	if input == "" {
		input = dataset
	}
	fmt.Printf(">> Rendering %s into %s ...\n", input, outDir)
	return sh.RunV("./"+binary, input, "--out", outDir)
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, rendered reports, generated templ files and
// the local run archive. Run Generate afterwards to restore the templ output.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.RemoveAll("bin")
	os.RemoveAll(outDir)
	if db := os.Getenv("MODREPORT_ARCHIVE_DB"); db != "" {
		os.Remove(db)
	}
	// Remove generated _templ.go files
	return sh.Run("find", templDir, "-name", "*_templ.go", "-delete")
}

// Install builds and installs the binary to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/modreport")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
