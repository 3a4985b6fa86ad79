// Package feed renders the public RSS 2.0 feed of the blog.
package feed

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/sachinssagar/Blog-post-backend/internal/models"
)

// Builder renders posts as an RSS document.
type Builder struct {
	baseURL     string
	title       string
	description string
}

// NewBuilder initializes a feed builder for the given public base URL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{
		baseURL:     baseURL,
		title:       "Blog posts",
		description: "Latest posts",
	}
}

// Render builds the RSS 2.0 document for the given posts.
func (b *Builder) Render(posts []models.Post) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	rss := doc.CreateElement("rss")
	rss.CreateAttr("version", "2.0")
	channel := rss.CreateElement("channel")
	channel.CreateElement("title").SetText(b.title)
	channel.CreateElement("link").SetText(b.baseURL + "/posts/")
	channel.CreateElement("description").SetText(b.description)

	for _, post := range posts {
		item := channel.CreateElement("item")
		item.CreateElement("title").SetText(post.Title)
		item.CreateElement("link").SetText(fmt.Sprintf("%s/posts/get-by-slug/?slug=%s", b.baseURL, post.Slug))
		guid := item.CreateElement("guid")
		guid.CreateAttr("isPermaLink", "false")
		guid.SetText(post.Slug)
		item.CreateElement("description").SetText(post.Content)
		item.CreateElement("pubDate").SetText(post.CreatedAt.Format(time.RFC1123Z))
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render feed: %w", err)
	}
	return out, nil
}
