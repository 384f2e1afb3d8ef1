package storefront

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/petscout/backend/internal/domain"
)

// Extraction is total: malformed input yields a shorter (possibly empty)
// result, never an error. A card that cannot be parsed is logged and
// skipped; only a missing product link disqualifies a record.

// ExtractProducts parses product cards from a search or collection page
func ExtractProducts(html, baseURL string) []domain.Product {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[STORE] unparseable listing page: %v", err)
		return nil
	}

	var products []domain.Product

	doc.Find("div.product-item").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.product-item__image-wrapper").First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			// A product without a link cannot be used downstream
			log.Printf("[STORE] skipping product card without link")
			return
		}

		productURL := resolveURL(baseURL, href)

		title := strings.TrimSpace(card.Find("a.product-item__title").First().Text())
		if title == "" {
			title = "Unknown Title"
		}

		imageURL := ""
		if img := card.Find("img.product-item__primary-image").First(); img.Length() > 0 {
			src, _ := img.Attr("data-src")
			imageURL = normalizeImageURL(src)
		}

		price := strings.TrimSpace(card.Find("span.price").First().Text())
		if price == "" {
			price = "Price not available"
		}

		comparePrice := strings.TrimSpace(card.Find("span.price--compare").First().Text())
		soldOut := card.Find("span.product-item__label--sold-out").Length() > 0

		products = append(products, domain.Product{
			ID:           productIDFromURL(productURL),
			Title:        title,
			URL:          productURL,
			Price:        price,
			ComparePrice: comparePrice,
			OnSale:       comparePrice != "",
			ImageURL:     imageURL,
			InStock:      !soldOut,
			Source:       domain.SourceHTML,
		})
	})

	return products
}

// ExtractProductDetail parses a product detail page
func ExtractProductDetail(html string) *domain.ProductDetail {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[STORE] unparseable product page: %v", err)
		return nil
	}

	detail := &domain.ProductDetail{
		Images:         []string{},
		Variants:       []string{},
		Specifications: map[string]string{},
	}

	detail.Title = strings.TrimSpace(doc.Find("h1.product-meta__title").First().Text())
	if detail.Title == "" {
		detail.Title = "Unknown Title"
	}

	detail.Description = strings.TrimSpace(doc.Find("div.product-meta__description-content").First().Text())

	detail.Price = strings.TrimSpace(doc.Find("span.product-meta__price").First().Text())
	if detail.Price == "" {
		detail.Price = "Price not available"
	}

	detail.ComparePrice = strings.TrimSpace(doc.Find("span.product-meta__price--compare").First().Text())
	detail.OnSale = detail.ComparePrice != ""
	detail.InStock = doc.Find("span.product-form__inventory--sold-out").Length() == 0

	doc.Find("div.product-gallery__carousel-item img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("data-zoom")
		if !ok || src == "" {
			src, _ = img.Attr("src")
		}
		if src = normalizeImageURL(src); src != "" {
			detail.Images = append(detail.Images, src)
		}
	})

	doc.Find("div.block-swatch").Each(func(_ int, variant *goquery.Selection) {
		name := strings.TrimSpace(variant.Find("div.block-swatch__item-text").First().Text())
		if name != "" {
			detail.Variants = append(detail.Variants, name)
		}
	})

	doc.Find("div.product-meta__table table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 2 {
			key := strings.TrimSpace(cells.Eq(0).Text())
			value := strings.TrimSpace(cells.Eq(1).Text())
			if key != "" {
				detail.Specifications[key] = value
			}
		}
	})

	return detail
}

// ExtractCategories parses the main navigation menu into category trees
func ExtractCategories(html, baseURL string) []domain.Category {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[STORE] unparseable home page: %v", err)
		return nil
	}

	var categories []domain.Category

	doc.Find("nav.header__navigation ul.nav-bar li.nav-bar__item--has-dropdown").Each(func(_ int, item *goquery.Selection) {
		mainLink := item.Find("a.nav-bar__link").First()
		if mainLink.Length() == 0 {
			return
		}

		name := strings.TrimSpace(mainLink.Text())
		href, _ := mainLink.Attr("href")

		subcategories := []domain.Subcategory{}
		item.Find("ul.nav-dropdown li.nav-dropdown__item a").Each(func(_ int, sub *goquery.Selection) {
			subName := strings.TrimSpace(sub.Text())
			subHref, _ := sub.Attr("href")
			subcategories = append(subcategories, domain.Subcategory{
				Name: subName,
				URL:  resolveURL(baseURL, subHref),
			})
		})

		categories = append(categories, domain.Category{
			Name:          name,
			URL:           resolveURL(baseURL, href),
			Subcategories: subcategories,
		})
	})

	return categories
}

// resolveURL resolves a possibly relative href against the site base URL
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return baseURL
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// normalizeImageURL upgrades protocol-relative image URLs to https
func normalizeImageURL(src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// productIDFromURL derives the product id (handle) from a product URL
func productIDFromURL(productURL string) string {
	const marker = "products/"
	idx := strings.Index(productURL, marker)
	if idx < 0 {
		return ""
	}
	id := productURL[idx+len(marker):]
	// Strip query strings and fragments from the handle
	if cut := strings.IndexAny(id, "?#"); cut >= 0 {
		id = id[:cut]
	}
	return id
}
