package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// sitemapPages lists the public frontend routes advertised to crawlers.
var sitemapPages = []struct {
	Path       string
	ChangeFreq string
	Priority   string
}{
	{"/", "daily", "1.0"},
	{"/browse/offers", "hourly", "0.9"},
	{"/browse/requests", "hourly", "0.9"},
	{"/donor-partners", "weekly", "0.7"},
	{"/about", "monthly", "0.5"},
	{"/faq", "monthly", "0.5"},
}

// Sitemap handles GET /sitemap.xml.
func (s *Server) Sitemap(c *fiber.Ctx) error {
	base := "https://" + s.config.AppDomain
	today := time.Now().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, page := range sitemapPages {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>%s</changefreq>\n    <priority>%s</priority>\n  </url>\n",
			base, page.Path, today, page.ChangeFreq, page.Priority)
	}
	b.WriteString("</urlset>\n")

	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.SendString(b.String())
}

// Robots handles GET /robots.txt.
func (s *Server) Robots(c *fiber.Ctx) error {
	body := fmt.Sprintf(`User-agent: *
Allow: /
Disallow: /admin
Disallow: /chats
Disallow: /auth

Sitemap: https://%s/sitemap.xml
`, s.config.AppDomain)

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(body)
}

// LLMsTxt handles GET /llms.txt, a plain-text description of the service for
// AI crawlers.
func (s *Server) LLMsTxt(c *fiber.Ctx) error {
	body := fmt.Sprintf(`# %s

> %s connects students who need meal assistance with community donors.
> Operated by %s.

Students post meal requests describing their dietary and medical needs;
donors post meal offers. Matches are confirmed in person with a completion
PIN and both parties can rate each other afterwards.

## Key pages
- https://%s/browse/offers : available meal offers
- https://%s/browse/requests : open meal requests
- https://%s/donor-partners : partner organizations supporting the program

## Contact
%s
`, s.config.AppName, s.config.AppName, s.config.OrgName,
		s.config.AppDomain, s.config.AppDomain, s.config.AppDomain,
		s.config.OrgContactURL)

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(body)
}

// OrganizationSchema handles GET /schema.org/organization (JSON-LD).
func (s *Server) OrganizationSchema(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/ld+json")
	return c.JSON(fiber.Map{
		"@context":   "https://schema.org",
		"@type":      "NGO",
		"name":       s.config.OrgName,
		"url":        "https://" + s.config.AppDomain,
		"address":    s.config.OrgAddress,
		"telephone":  s.config.OrgPhone,
		"sameAs":     []string{s.config.OrgContactURL},
		"subjectOf": fiber.Map{
			"@type": "WebApplication",
			"name":  s.config.AppName,
			"url":   "https://" + s.config.AppDomain,
		},
	})
}

// faqEntries back both the FAQ page and its structured data.
var faqEntries = []struct {
	Question string
	Answer   string
}{
	{
		"Who can request a meal?",
		"Any registered student. Post a request describing your dietary needs and availability, and nearby donors can accept it.",
	},
	{
		"How does the handoff work?",
		"When a match is accepted, both parties get a chat thread and a 4-digit completion PIN. Enter the PIN at the handoff to confirm the meal was delivered.",
	},
	{
		"Can I donate anonymously?",
		"Yes. Donors can mark their profile or individual offers as anonymous and only their city is shown.",
	},
	{
		"Is there a limit on how many meals I can offer?",
		"Donors can set a weekly meal limit on their profile; offers beyond that limit in a rolling 7-day window are declined.",
	},
}

// FAQSchema handles GET /schema.org/faq (JSON-LD FAQPage).
func (s *Server) FAQSchema(c *fiber.Ctx) error {
	entities := make([]fiber.Map, 0, len(faqEntries))
	for _, e := range faqEntries {
		entities = append(entities, fiber.Map{
			"@type": "Question",
			"name":  e.Question,
			"acceptedAnswer": fiber.Map{
				"@type": "Answer",
				"text":  e.Answer,
			},
		})
	}

	c.Set(fiber.HeaderContentType, "application/ld+json")
	return c.JSON(fiber.Map{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entities,
	})
}
