// Package dimigo scrapes the school cafeteria board: a paginated
// listing of postings, and a free-text detail page per posting.
package dimigo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"babnet-backend/lib/fetchutil"
	"babnet-backend/lib/htmlutil"
	"babnet-backend/lib/meal"
	"babnet-backend/lib/telemetry"
	"babnet-backend/lib/textutil"
	"babnet-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/dimigo")

// menuMarker filters listing rows down to menu-type postings.
const menuMarker = "식단"

type Options struct {
	// the board endpoint, e.g. https://www.dimigo.hs.kr/index.php
	BaseUrl string `json:"base_url"`
	// the board identifier passed as ?mid=
	BoardPath string `json:"board_path"`
	// inclusive page range of the listing to walk
	PageStart int `json:"page_start"`
	PageEnd   int `json:"page_end"`
}

func DefaultOptions() Options {
	return Options{
		BaseUrl:   "https://www.dimigo.hs.kr/index.php",
		BoardPath: "school_cafeteria",
		PageStart: 1,
		PageEnd:   1,
	}
}

// MenuPost is one detected menu posting on the listing. it lives for
// one scan pass and is never persisted.
type MenuPost struct {
	DocumentId       string
	Title            string
	Date             string
	RegistrationDate string
	ParsedDate       time.Time
}

type Client struct {
	baseUrl *url.URL
	origin  *url.URL
	http    *resty.Client
	opts    Options
}

func NewClient(opts Options, fetch fetchutil.Options) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := fetchutil.NewClient(fetch)
	telemetry.InstrumentResty(client, "scrapers/dimigo/http")

	return &Client{
		baseUrl: baseUrl,
		origin:  &url.URL{Scheme: baseUrl.Scheme, Host: baseUrl.Host},
		http:    client,
		opts:    opts,
	}, nil
}

func (c *Client) listingUrl(page int) string {
	link := *c.baseUrl
	query := url.Values{}
	query.Set("mid", c.opts.BoardPath)
	query.Set("page", strconv.Itoa(page))
	link.RawQuery = query.Encode()
	return link.String()
}

func (c *Client) postingUrl(documentId string) string {
	link := *c.baseUrl
	query := url.Values{}
	query.Set("mid", c.opts.BoardPath)
	query.Set("document_srl", documentId)
	link.RawQuery = query.Encode()
	return link.String()
}

var documentSrlRegex = regexp.MustCompile(`document_srl=(\d+)`)
var monthDayRegex = regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`)

var registrationLayouts = []string{"2006-01-02", "2006.01.02"}

// CalculateMenuDate infers the calendar date a posting is about from
// the "<month>월 <day>일" fragment of its title. the year comes from
// the registration date, adjusted when the posting references the
// adjacent year's month across a year boundary.
func CalculateMenuDate(title, registrationDate string) (time.Time, bool) {
	match := monthDayRegex.FindStringSubmatch(textutil.NormalizeFullWidth(title))
	if match == nil {
		return time.Time{}, false
	}
	menuMonth, _ := strconv.Atoi(match[1])
	menuDay, _ := strconv.Atoi(match[2])

	var registered time.Time
	var err error
	for _, layout := range registrationLayouts {
		registered, err = time.ParseInLocation(layout, strings.TrimSpace(registrationDate), timezone.Location)
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, false
	}

	menuYear := registered.Year()
	if registered.Month() == time.December && menuMonth == 1 {
		menuYear++
	} else if registered.Month() == time.January && menuMonth == 12 {
		menuYear--
	}

	return time.Date(menuYear, time.Month(menuMonth), menuDay, 0, 0, 0, 0, timezone.Location), true
}

// FetchMenuPosts walks the configured page range of the listing and
// returns every dated menu posting, in page order then row order. a
// page fetch failure aborts the whole scan.
func (c *Client) FetchMenuPosts(ctx context.Context) ([]MenuPost, error) {
	ctx, span := tracer.Start(ctx, "client:FetchMenuPosts")
	defer span.End()

	var allPosts []MenuPost
	for page := c.opts.PageStart; page <= c.opts.PageEnd; page++ {
		html, err := fetchutil.FetchHTML(ctx, c.http, c.listingUrl(page))
		if err != nil {
			span.SetStatus(codes.Error, "failed to fetch listing page")
			return nil, fmt.Errorf("fetch listing page %d: %w", page, err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			span.SetStatus(codes.Error, "failed to parse listing html")
			return nil, err
		}

		count := 0
		doc.Find(".scContent tbody tr").Each(func(_ int, row *goquery.Selection) {
			link := row.Find(".scEllipsis a")
			href := link.AttrOr("href", "")
			groups := documentSrlRegex.FindStringSubmatch(href)
			if len(groups) < 2 {
				return
			}

			title := strings.TrimSpace(link.Text())
			if !strings.Contains(title, menuMarker) {
				return
			}

			registrationDate := strings.TrimSpace(row.Find("td:nth-child(5)").Text())
			menuDate, ok := CalculateMenuDate(title, registrationDate)
			if !ok {
				return
			}

			allPosts = append(allPosts, MenuPost{
				DocumentId:       groups[1],
				Title:            title,
				Date:             timezone.FormatDate(menuDate),
				RegistrationDate: registrationDate,
				ParsedDate:       menuDate,
			})
			count++
		})

		slog.InfoContext(ctx, "fetched menu posts", "page", page, "count", count)
	}

	return allPosts, nil
}

// FetchPosting fetches one posting's detail page and parses it into
// per-meal item lists and photos. persistence is the caller's concern.
func (c *Client) FetchPosting(ctx context.Context, documentId string) (meal.CafeteriaData, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPosting")
	defer span.End()

	html, err := fetchutil.FetchHTML(ctx, c.http, c.postingUrl(documentId))
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch posting")
		return meal.CafeteriaData{}, fmt.Errorf("fetch posting %s: %w", documentId, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse posting html")
		return meal.CafeteriaData{}, err
	}

	content := doc.Find(".xe_content")
	data := parseContent(htmlutil.Lines(content))
	c.extractImages(content, &data)

	return data, nil
}

// extractImages assigns per-meal photos from <img> tags by their alt
// text: 조 → breakfast, 중 → lunch, 석 → dinner.
func (c *Client) extractImages(content *goquery.Selection, data *meal.CafeteriaData) {
	content.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" {
			return
		}
		full := htmlutil.ResolveURL(c.origin, src)
		if full == "" {
			return
		}

		alt := strings.ToLower(img.AttrOr("alt", ""))
		switch {
		case strings.Contains(alt, "조"):
			data.Breakfast.Image = full
		case strings.Contains(alt, "중"):
			data.Lunch.Image = full
		case strings.Contains(alt, "석"):
			data.Dinner.Image = full
		}
	})
}
