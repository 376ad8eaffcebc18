package cli

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/brendan.keane/adminrest/internal/config"
	"github.com/brendan.keane/adminrest/internal/errors"
	"github.com/brendan.keane/adminrest/pkg/fetch"
	"github.com/brendan.keane/adminrest/pkg/rest"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	methodStyles = map[string]lipgloss.Style{
		"GET":    methodStyle("#61AFEF"),
		"POST":   methodStyle("#98C379"),
		"PUT":    methodStyle("#E5C07B"),
		"DELETE": methodStyle("#E06C75"),
	}

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5C07B")).
			Bold(true)

	headerNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98C379"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E06C75"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ABB2BF"))
)

func methodStyle(background string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(background)).
		Padding(0, 1)
}

const redacted = "[REDACTED]"

// presenter writes responses to stdout and verbose details to stderr
type presenter struct {
	out    io.Writer
	errOut io.Writer
	config *config.Config
}

func newPresenter(out, errOut io.Writer, cfg *config.Config) *presenter {
	return &presenter{out: out, errOut: errOut, config: cfg}
}

func statusStyle(code int) lipgloss.Style {
	switch {
	case code >= 500:
		return failureStyle
	case code >= 400:
		return warningStyle
	default:
		return successStyle
	}
}

func renderMethod(method string) string {
	if style, ok := methodStyles[method]; ok {
		return style.Render(method)
	}
	return method
}

// redactHeader hides the access token
func redactHeader(name, value string) string {
	if strings.EqualFold(name, rest.AccessTokenHeader) {
		return redacted
	}
	return value
}

func sortedHeaderNames(header http.Header) []string {
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// showRequest prints the outgoing request to stderr
func (p *presenter) showRequest(req fetch.Request) {
	fmt.Fprintf(p.errOut, "> %s %s\n", renderMethod(req.Method), urlStyle.Render(req.URL))
	for _, name := range sortedHeaderNames(req.Header) {
		for _, value := range req.Header[name] {
			fmt.Fprintf(p.errOut, "> %s: %s\n", headerNameStyle.Render(name), redactHeader(name, value))
		}
	}
	fmt.Fprintln(p.errOut, ">")
}

// showDryRun prints the request that would be sent, body included, to stdout
func (p *presenter) showDryRun(req fetch.Request) {
	fmt.Fprintf(p.out, "%s %s\n", req.Method, req.URL)
	for _, name := range sortedHeaderNames(req.Header) {
		for _, value := range req.Header[name] {
			fmt.Fprintf(p.out, "%s: %s\n", name, redactHeader(name, value))
		}
	}
	if req.Body != nil {
		fmt.Fprintf(p.out, "\n%s\n", *req.Body)
	}
}

// showResponse prints the response body, preceded by headers when requested
func (p *presenter) showResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeNetwork, "failed to read response body")
	}

	switch {
	case p.config.Verbose:
		status := statusStyle(resp.StatusCode).Render(statusLine(resp))
		fmt.Fprintf(p.errOut, "< %s\n", status)
		for _, name := range sortedHeaderNames(resp.Header) {
			for _, value := range resp.Header[name] {
				fmt.Fprintf(p.errOut, "< %s: %s\n", headerNameStyle.Render(name), value)
			}
		}
		fmt.Fprintln(p.errOut, "<")
	case p.config.IncludeHeaders:
		fmt.Fprintln(p.out, statusLine(resp))
		for _, name := range sortedHeaderNames(resp.Header) {
			for _, value := range resp.Header[name] {
				fmt.Fprintf(p.out, "%s: %s\n", name, value)
			}
		}
		fmt.Fprintln(p.out)
	}

	_, err = p.out.Write(body)
	return err
}

// showAttempts summarizes the attempts recorded on registry
func (p *presenter) showAttempts(registry *prometheus.Registry) {
	responses := sumCounter(registry, "adminrest_responses_total")
	retries := sumCounter(registry, "adminrest_retries_total")
	fmt.Fprintf(p.errOut, "\n%s\n", mutedStyle.Render(fmt.Sprintf("* %.0f response(s), %.0f retry(ies)", responses, retries)))
}

func statusLine(resp *http.Response) string {
	major, minor := resp.ProtoMajor, resp.ProtoMinor
	if major == 0 {
		major, minor = 1, 1
	}
	return fmt.Sprintf("HTTP/%d.%d %d %s", major, minor, resp.StatusCode, http.StatusText(resp.StatusCode))
}

func sumCounter(registry *prometheus.Registry, name string) float64 {
	families, err := registry.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
