package checks

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shoplens/seoaudit/pkg/htmltext"
	"github.com/shoplens/seoaudit/pkg/model"
	"github.com/shoplens/seoaudit/pkg/probe"
)

const (
	SiteTitleMin     = 5
	HomepageMinWords = 150

	// DefaultTagline is the platform's placeholder tagline; leaving it in
	// place is itself an issue.
	DefaultTagline = "Just another WordPress site"
)

// CheckSite evaluates the store-wide settings. The prober issues at most
// three bounded HEAD requests (sitemap, sitemap index, robots).
func CheckSite(ctx context.Context, site *model.SiteSettings, prober *probe.Prober) []model.Issue {
	var issues []model.Issue

	if site.PermalinkStructure == "" || strings.Contains(site.PermalinkStructure, "?p=") {
		issues = append(issues, model.Issue{
			Check:        model.CheckPlainPermalinks,
			Severity:     model.SeverityCritical,
			Title:        "Plain permalinks",
			Description:  "URLs use the plain ?p= structure; search engines and shoppers need descriptive URLs.",
			CurrentValue: site.PermalinkStructure,
		})
	}

	if site.DiscourageIndexing {
		issues = append(issues, model.Issue{
			Check:       model.CheckSearchEngineBlocked,
			Severity:    model.SeverityCritical,
			Title:       "Search engines blocked",
			Description: "The site is set to discourage search engines from indexing it.",
		})
	}

	if !strings.HasPrefix(site.URL, "https://") {
		issues = append(issues, model.Issue{
			Check:        model.CheckNoHTTPS,
			Severity:     model.SeverityCritical,
			Title:        "Site not on HTTPS",
			Description:  "The site URL is not served over HTTPS; this is a direct ranking and trust problem.",
			CurrentValue: site.URL,
		})
	}

	base := strings.TrimRight(site.URL, "/")
	if !prober.Reachable(ctx, base+"/sitemap.xml") && !prober.Reachable(ctx, base+"/sitemap_index.xml") {
		issues = append(issues, model.Issue{
			Check:       model.CheckSitemapMissing,
			Severity:    model.SeverityWarning,
			Title:       "Sitemap not reachable",
			Description: "Neither /sitemap.xml nor /sitemap_index.xml answered 200.",
		})
	}

	if !prober.Reachable(ctx, base+"/robots.txt") {
		issues = append(issues, model.Issue{
			Check:       model.CheckRobotsMissing,
			Severity:    model.SeverityWarning,
			Title:       "robots.txt not reachable",
			Description: "/robots.txt did not answer 200.",
		})
	}

	if site.Title == "" {
		issues = append(issues, model.Issue{
			Check:       model.CheckSiteTitleMissing,
			Severity:    model.SeverityCritical,
			Title:       "Site title empty",
			Description: "The site has no title; every search snippet leads with it.",
		})
	}

	if site.Tagline == "" || site.Tagline == DefaultTagline {
		issues = append(issues, model.Issue{
			Check:        model.CheckDefaultTagline,
			Severity:     model.SeverityWarning,
			Title:        "Tagline missing or default",
			Description:  "The tagline is empty or still the platform placeholder.",
			CurrentValue: site.Tagline,
		})
	}

	return issues
}

// CheckHomepage evaluates the homepage rules. front is the static front
// page (nil when the homepage shows the post stream); metaDescription is
// the front page's resolved meta description, "" otherwise.
func CheckHomepage(site *model.SiteSettings, front *model.Post, metaDescription string) []model.Issue {
	var issues []model.Issue

	if utf8.RuneCountInString(site.Title) < SiteTitleMin {
		issues = append(issues, model.Issue{
			Check:        model.CheckSiteTitleShort,
			Severity:     model.SeverityWarning,
			Title:        "Site title too short",
			Description:  fmt.Sprintf("The site title is under %d characters.", SiteTitleMin),
			CurrentValue: site.Title,
		})
	}

	if metaDescription == "" || metaDescription == DefaultTagline {
		issues = append(issues, model.Issue{
			Check:        model.CheckHomepageMetaMissing,
			Severity:     model.SeverityCritical,
			Title:        "Homepage meta description missing",
			Description:  "The homepage has no meta description, or still carries the platform placeholder.",
			CurrentValue: metaDescription,
		})
	}

	if site.ShowOnFront != "page" {
		issues = append(issues, model.Issue{
			Check:       model.CheckHomepageShowsPosts,
			Severity:    model.SeverityWarning,
			Title:       "Homepage shows post stream",
			Description: "The homepage is the blog post stream rather than a curated static page.",
		})
	} else if front != nil {
		if words := htmltext.WordCount(front.Content); words < HomepageMinWords {
			issues = append(issues, model.Issue{
				Check:        model.CheckHomepageContentThin,
				Severity:     model.SeverityWarning,
				Title:        "Homepage content too thin",
				Description:  fmt.Sprintf("Only %d words on the homepage; aim for at least %d.", words, HomepageMinWords),
				CurrentValue: front.Content,
			})
		}
	}

	return issues
}
