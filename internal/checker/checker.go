// Package checker compares a submission's output against the expected
// answer for one test case.
package checker

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Checker is a closed set of comparison strategies.
type Checker interface {
	// Check compares the program's output against the expected answer
	// (input is available for checkers that need it; the two built-in
	// strategies ignore it). It returns a score in {0.0, 1.0} and a
	// human-readable message.
	Check(inputPath, outputPath, answerPath string) (float64, string, error)
}

// FileCmp compares both files line by line, verbatim.
type FileCmp struct{}

func (FileCmp) Check(_, outputPath, answerPath string) (float64, string, error) {
	ok, msg, err := compareByLine(outputPath, answerPath, func(a, b string) bool { return a == b })
	if err != nil {
		return 0, "", err
	}
	if ok {
		return 1.0, "Accepted", nil
	}
	return 0.0, msg, nil
}

// AutoCmp tokenizes each line by whitespace and compares tokens either as
// strings or, when both parse as float64, within a tolerance.
type AutoCmp struct {
	RelEps      float64
	AbsEps      float64
	ToLowerCase bool
}

func (c AutoCmp) Check(_, outputPath, answerPath string) (float64, string, error) {
	ok, msg, err := compareByLine(outputPath, answerPath, func(a, b string) bool {
		return c.tokensEqual(a, b)
	})
	if err != nil {
		return 0, "", err
	}
	if ok {
		return 1.0, "Accepted", nil
	}
	return 0.0, msg, nil
}

func (c AutoCmp) tokensEqual(outLine, ansLine string) bool {
	outTokens := strings.Fields(outLine)
	ansTokens := strings.Fields(ansLine)
	if len(outTokens) != len(ansTokens) {
		return false
	}
	for i := range outTokens {
		a, b := outTokens[i], ansTokens[i]
		if c.ToLowerCase {
			a, b = strings.ToLower(a), strings.ToLower(b)
		}
		if a == b {
			continue
		}
		fa, errA := strconv.ParseFloat(a, 64)
		fb, errB := strconv.ParseFloat(b, 64)
		if errA != nil || errB != nil {
			return false
		}
		if !floatsClose(fa, fb, c.RelEps, c.AbsEps) {
			return false
		}
	}
	return true
}

func floatsClose(a, b, relEps, absEps float64) bool {
	diff := math.Abs(a - b)
	if diff < absEps {
		return true
	}
	denom := math.Max(math.Max(math.Abs(a), math.Abs(b)), relEps)
	return diff/denom < relEps
}

// compareByLine reads both files line by line, applying eq to each
// corresponding pair. A trailing blank-line asymmetry is tolerated: if one
// side's scanner is exhausted, the other must also be exhausted (or have
// only a trailing empty line left).
func compareByLine(outputPath, answerPath string, eq func(a, b string) bool) (bool, string, error) {
	outFile, err := os.Open(outputPath)
	if err != nil {
		return false, "", fmt.Errorf("open output: %w", err)
	}
	defer outFile.Close()

	ansFile, err := os.Open(answerPath)
	if err != nil {
		return false, "", fmt.Errorf("open answer: %w", err)
	}
	defer ansFile.Close()

	outScanner := bufio.NewScanner(outFile)
	outScanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
	ansScanner := bufio.NewScanner(ansFile)
	ansScanner.Buffer(make([]byte, 0, 64*1024), 1<<24)

	lineNo := 0
	for {
		outHas := outScanner.Scan()
		ansHas := ansScanner.Scan()
		lineNo++

		if !outHas && !ansHas {
			if err := outScanner.Err(); err != nil {
				return false, "", fmt.Errorf("read output: %w", err)
			}
			if err := ansScanner.Err(); err != nil {
				return false, "", fmt.Errorf("read answer: %w", err)
			}
			return true, "Accepted", nil
		}

		if outHas != ansHas {
			// Tolerate one side exhausting on a trailing blank line.
			if !outHas && ansScanner.Text() == "" {
				continue
			}
			if !ansHas && outScanner.Text() == "" {
				continue
			}
			return false, fmt.Sprintf("line %d: unexpected end of %s", lineNo, shorterSide(outHas)), nil
		}

		if !eq(outScanner.Text(), ansScanner.Text()) {
			return false, fmt.Sprintf("line %d: output differs from answer", lineNo), nil
		}
	}
}

func shorterSide(outHas bool) string {
	if !outHas {
		return "output"
	}
	return "answer"
}
