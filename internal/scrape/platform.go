package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/retreat-leads/internal/model"
)

// DetectPlatform identifies the listing platform a search URL belongs to.
func DetectPlatform(rawURL string) (model.Platform, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", eris.Errorf("scrape: invalid search url %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "retreat.guru" || strings.HasSuffix(host, ".retreat.guru"):
		return model.PlatformRetreatGuru, nil
	case host == "bookretreats.com" || strings.HasSuffix(host, ".bookretreats.com"):
		return model.PlatformBookRetreats, nil
	default:
		return "", eris.Errorf("scrape: unsupported source %q (supported: %s, %s)",
			host, model.PlatformRetreatGuru, model.PlatformBookRetreats)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func stripRetreats(s string) string {
	s = strings.TrimSuffix(s, " Retreats")
	return strings.TrimSuffix(s, " retreats")
}

func slugList(vals []string, limit int) string {
	if len(vals) > limit {
		vals = vals[:limit]
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s := slugify(v); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "-")
}

// Label derives a short batch label from a search URL, e.g.
// "rg-yoga-mexico" or "br-yoga-mexico". It is used when the operator does
// not supply one.
func Label(rawURL string) (string, error) {
	platform, err := DetectPlatform(rawURL)
	if err != nil {
		return "", err
	}
	u, _ := url.Parse(strings.TrimSpace(rawURL))
	q := u.Query()

	var parts []string
	switch platform {
	case model.PlatformRetreatGuru:
		parts = append(parts, "rg")
		topics := q["topic"]
		parts = append(parts, slugList(topics, 2), slugList(q["country"], 2))

		inTopics := make(map[string]bool, len(topics))
		for _, t := range topics {
			inTopics[strings.ToLower(t)] = true
		}
		var exps []string
		for _, e := range q["experiences_type"] {
			if !inTopics[strings.ToLower(e)] {
				exps = append(exps, e)
			}
		}
		parts = append(parts, slugList(exps, 2))

	default:
		parts = append(parts, "br")
		if typ := q.Get("scopes[type]"); typ != "" {
			parts = append(parts, slugify(stripRetreats(typ)), slugify(q.Get("scopes[location]")))
		} else {
			// Path form: /s/yoga-retreats/mexico
			segs := strings.Split(strings.Trim(u.Path, "/"), "/")
			if len(segs) > 1 && segs[0] == "s" {
				for _, seg := range segs[1:] {
					parts = append(parts, slugify(strings.TrimSuffix(seg, "-retreats")))
				}
			}
		}
		if cat := q.Get("scopes[category]"); cat != "" {
			parts = append(parts, slugify(stripRetreats(cat)))
		}
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "-"), nil
}
