package main

import (
	"fmt"
	"io"
	"os"

	"jobby-backend/internal/form"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
)

var stderr io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorRed, "✗ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stderr, colorize(colorYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printStatus(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", colorize(colorBold, label+":"), value)
}

// toastNotifier prints form notifications the way the page shows toasts.
type toastNotifier struct{}

func (toastNotifier) Notify(n form.Notification) {
	msg := n.Title
	if n.Description != "" {
		msg += ": " + n.Description
	}
	if n.Status == form.StatusError {
		printError("%s", msg)
		return
	}
	printSuccess("%s", msg)
}
