package source

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"newsbrief/internal/domain"
)

// Defaults returns the built-in source table. Selector strings are the
// full class attribute values of article content containers.
func Defaults() []domain.SourceProfile {
	return []domain.SourceProfile{
		{
			Name:      "Daily Prothom Alo",
			Domains:   []string{`prothomalo\.com`},
			Selectors: []string{"story-element story-element-text"},
			FeedURL:   "https://www.prothomalo.com/feed",
		},
		{
			Name:      "The Daily Star",
			Domains:   []string{`thedailystar\.net`},
			Selectors: []string{"pb-20 clearfix"},
			FeedURL:   "https://www.thedailystar.net/rss.xml",
		},
		{
			Name:      "DW",
			Domains:   []string{`dw\.com`},
			Selectors: []string{"cc0m0op s1ebneao rich-text t1it8i9i r1wgtjne wgx1hx2 b1ho1h07"},
			FeedURL:   "https://rss.dw.com/rdf/rss-en-all",
		},
		{
			Name:    "The Business Standard",
			Domains: []string{`tbsnews\.net`},
			Selectors: []string{
				"section-content clearfix margin-bottom-2",
				"section-content margin-bottom-2",
			},
			FeedURL: "https://www.tbsnews.net/rss.xml",
		},
		{
			Name:      "Daily Manab Zamin",
			Domains:   []string{`mzamin\.com`},
			Selectors: []string{"col-sm-10 offset-sm-1 fs-5 lh-base mt-4 mb-5"},
		},
	}
}

type profileSpec struct {
	Name      string   `yaml:"name"`
	Domains   []string `yaml:"domains"`
	Selectors []string `yaml:"selectors"`
	FeedURL   string   `yaml:"feed_url"`
}

type profilesFile struct {
	Sources []profileSpec `yaml:"sources"`
}

// LoadProfiles reads a source table from a YAML file, replacing the
// built-in defaults.
func LoadProfiles(path string) ([]domain.SourceProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var file profilesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, errors.New("sources file has no sources")
	}

	profiles := make([]domain.SourceProfile, 0, len(file.Sources))
	for _, spec := range file.Sources {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, errors.New("source name is empty")
		}
		if len(spec.Selectors) == 0 {
			return nil, fmt.Errorf("source %q has no selectors", name)
		}

		profiles = append(profiles, domain.SourceProfile{
			Name:      name,
			Domains:   spec.Domains,
			Selectors: spec.Selectors,
			FeedURL:   strings.TrimSpace(spec.FeedURL),
		})
	}

	return profiles, nil
}

// Resolver maps a source name or an article URL to its profile.
type Resolver struct {
	profiles []domain.SourceProfile
	domainRe [][]*regexp.Regexp
}

func NewResolver(profiles []domain.SourceProfile) (*Resolver, error) {
	domainRe := make([][]*regexp.Regexp, len(profiles))

	for i, profile := range profiles {
		res := make([]*regexp.Regexp, 0, len(profile.Domains))

		for _, pattern := range profile.Domains {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf(
					"compile domain pattern %q (source = %s): %w",
					pattern,
					profile.Name,
					err,
				)
			}
			res = append(res, re)
		}

		domainRe[i] = res
	}

	return &Resolver{profiles: profiles, domainRe: domainRe}, nil
}

// Resolve accepts an exact profile name (case-insensitive) or a URL that
// one of the profile domain patterns matches. An unrecognized identifier
// returns a zero profile and false.
func (r *Resolver) Resolve(identifier string) (domain.SourceProfile, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.SourceProfile{}, false
	}

	for _, profile := range r.profiles {
		if strings.EqualFold(profile.Name, identifier) {
			return profile, true
		}
	}

	for i, res := range r.domainRe {
		for _, re := range res {
			if re.MatchString(identifier) {
				return r.profiles[i], true
			}
		}
	}

	return domain.SourceProfile{}, false
}

func (r *Resolver) Profiles() []domain.SourceProfile {
	return slices.Clone(r.profiles)
}
