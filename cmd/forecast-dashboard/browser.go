package main

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// startFunc launches a process without waiting for it.
type startFunc func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// browserURL turns a listen address into a URL a local browser can open.
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// browserLaunchers lists the commands tried, in order, to show url on goos.
// The platform opener comes first.
func browserLaunchers(goos, url string) [][]string {
	switch goos {
	case "windows":
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		launchers := [][]string{{"xdg-open", url}}
		for _, browser := range []string{"sensible-browser", "firefox", "chromium-browser", "google-chrome"} {
			launchers = append(launchers, []string{browser, url})
		}
		return launchers
	}
}

// openDashboard opens the dashboard served at addr with the first launcher
// that starts, and returns the URL it opened.
func openDashboard(addr string, start startFunc) (string, error) {
	url := browserURL(addr)

	var errs []error
	for _, launcher := range browserLaunchers(runtime.GOOS, url) {
		err := start(launcher[0], launcher[1:]...)
		if err == nil {
			return url, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", launcher[0], err))
	}
	return url, fmt.Errorf("no browser could be started: %w", errors.Join(errs...))
}
