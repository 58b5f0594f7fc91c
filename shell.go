package main

import (
	"bufio" // untuk interactive shell
	"fmt"
	"io"
	"os"
	"os/exec" // jalankan ulang exe sendiri dengan argumen user
	"path/filepath"
	"strings"

	"corp/sysreport/core"
)

/* ======================= Interactive shell ======================= */

// startInteractiveShell menampilkan banner & prompt, lalu menjalankan sysreport
// sebagai subprocess dengan argumen yang diketik user.
func startInteractiveShell() {
	exe, _ := os.Executable()
	exe = filepath.Clean(exe)

	runShell(os.Stdin, os.Stdout, func(args []string) error {
		cmd := exec.Command(exe, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
		return cmd.Run()
	})
}

// runShell loop prompt; run dipanggil sekali per baris perintah
func runShell(in io.Reader, out io.Writer, run func(args []string) error) {
	printBanner(out)
	rd := bufio.NewScanner(in)

	fmt.Fprintln(out, "Type commands below (same as CLI arguments). Examples:")
	fmt.Fprintln(out, "  report")
	fmt.Fprintln(out, "  report --format json --output system_report.json")
	fmt.Fprintln(out, "  vulncheck --document-id 2024-Oct")
	fmt.Fprintln(out, "Built-ins: help, exit, quit")
	fmt.Fprintln(out)

	for {
		fmt.Fprint(out, core.Colorize("SYSREPORT", core.ColorCyan)+"> ")

		if !rd.Scan() {
			// EOF (Ctrl+Z / Ctrl+D) -> keluar
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(rd.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			return
		case "help", "-h", "--help":
			printHelp(out)
			continue
		}

		// Izinkan user ketik: "sysreport.exe report ..." -> buang token pertama
		args := splitCommandLine(line)
		if len(args) > 0 {
			a0 := strings.ToLower(filepath.Base(args[0]))
			if a0 == "sysreport" || a0 == "sysreport.exe" {
				args = args[1:]
			}
		}
		if len(args) == 0 {
			continue
		}

		if err := run(args); err != nil {
			fmt.Fprintf(out, "[error] %v\n", err)
		}
		fmt.Fprintln(out) // spasi antar-run
	}
}

func printBanner(out io.Writer) {
	fmt.Fprintln(out, strings.Repeat("*", 70))
	fmt.Fprintln(out, "  SYSREPORT                      Windows system information report")
	fmt.Fprintln(out, strings.Repeat("*", 70))
}

// printHelp menjelaskan cara pakai dari dalam shell
func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Usage inside shell:")
	fmt.Fprintln(out, "  report                            write system_report.html")
	fmt.Fprintln(out, "  report --output C:\\temp\\host.html")
	fmt.Fprintln(out, "  report --format json --workers 4")
	fmt.Fprintln(out, "  vulncheck                         check build against this month's feed")
	fmt.Fprintln(out, "  vulncheck --document-id 2024-Oct --timeout 20s")
	fmt.Fprintln(out, "  version")
	fmt.Fprintln(out, "Global flags: --config FILE  --verbose  --log-file FILE")
	fmt.Fprintln(out, "Built-ins: help, exit, quit")
}

// splitCommandLine memecah input menjadi argumen (mendukung kutip "…").
func splitCommandLine(s string) []string {
	args := []string{}
	cur := strings.Builder{}
	inQuote := false
	quoted := false // token "" tetap dihitung sebagai argumen kosong

	flush := func() {
		if cur.Len() > 0 || quoted {
			args = append(args, cur.String())
		}
		cur.Reset()
		quoted = false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			inQuote = !inQuote
			quoted = true
		case ' ', '\t':
			if inQuote {
				cur.WriteByte(c)
			} else {
				flush()
			}
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return args
}
