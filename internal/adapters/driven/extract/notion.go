package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/docbase-labs/docbase-core/internal/core/domain"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
)

// Ensure NotionExtractor implements the interface.
var _ driven.Extractor = (*NotionExtractor)(nil)

// notionPages and notionBlocks cover the slice of the Notion API the
// extractor touches. Tests substitute fakes through newClient.
type notionPages interface {
	Get(ctx context.Context, id notionapi.PageID) (*notionapi.Page, error)
}

type notionBlocks interface {
	GetChildren(ctx context.Context, id notionapi.BlockID, pagination *notionapi.Pagination) (*notionapi.GetChildrenResponse, error)
}

// NotionExtractor fetches the configured workspace pages through the
// Notion API. The integration token is looked up in the credential
// store by the source's credential ID. Like the website extractor, a
// single failed page does not fail the source.
type NotionExtractor struct {
	credentials driven.CredentialStore
	newClient   func(token string) (notionPages, notionBlocks)
}

// NewNotionExtractor creates a notion extractor backed by the given
// credential store.
func NewNotionExtractor(credentials driven.CredentialStore) *NotionExtractor {
	return &NotionExtractor{
		credentials: credentials,
		newClient: func(token string) (notionPages, notionBlocks) {
			client := notionapi.NewClient(notionapi.Token(token))
			return client.Page, client.Block
		},
	}
}

// Type returns the source type this extractor handles.
func (e *NotionExtractor) Type() domain.SourceType {
	return domain.SourceTypeNotion
}

// Extract fetches every configured page and returns one item per page
// that yielded text.
func (e *NotionExtractor) Extract(ctx context.Context, source *domain.Source) ([]driven.Item, error) {
	if len(source.Config.PageIDs) == 0 {
		return nil, fmt.Errorf("%w: notion source has no page ids", domain.ErrInvalidInput)
	}
	if source.Config.CredentialID == "" {
		return nil, fmt.Errorf("%w: notion source has no credential", domain.ErrInvalidInput)
	}

	token, err := e.credentials.GetCredential(ctx, source.Config.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("load notion credential: %w", err)
	}
	pages, blocks := e.newClient(token)

	var items []driven.Item
	var failures []string
	for _, pageID := range source.Config.PageIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := e.fetchPage(ctx, pages, blocks, pageID)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", pageID, err))
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("all pages failed: %s", strings.Join(failures, "; "))
	}
	return items, nil
}

func (e *NotionExtractor) fetchPage(ctx context.Context, pages notionPages, blocks notionBlocks, pageID string) (driven.Item, error) {
	page, err := pages.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		return driven.Item{}, fmt.Errorf("get page: %w", err)
	}

	text, err := e.pageText(ctx, blocks, pageID)
	if err != nil {
		return driven.Item{}, err
	}
	if text == "" {
		return driven.Item{}, fmt.Errorf("no extractable text")
	}

	metadata := map[string]string{domain.MetaPageID: pageID}
	if title := pageTitle(page); title != "" {
		metadata[domain.MetaItemTitle] = title
	}
	return driven.Item{Text: text, Metadata: metadata}, nil
}

// pageText walks the page's block children and flattens them into
// paragraph-separated text, paginating through the block list.
func (e *NotionExtractor) pageText(ctx context.Context, blocks notionBlocks, pageID string) (string, error) {
	var paragraphs []string
	var cursor notionapi.Cursor
	for {
		resp, err := blocks.GetChildren(ctx, notionapi.BlockID(pageID), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return "", fmt.Errorf("list blocks: %w", err)
		}
		for _, block := range resp.Results {
			if text := blockText(block); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
		if !resp.HasMore {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
	return strings.Join(paragraphs, "\n\n"), nil
}

// blockText extracts the plain text of the block types that carry
// readable content. Unknown block types are skipped.
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return richText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return richText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return richText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return richText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return richText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return richText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		return richText(b.ToDo.RichText)
	case *notionapi.ToggleBlock:
		return richText(b.Toggle.RichText)
	case *notionapi.QuoteBlock:
		return richText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return richText(b.Callout.RichText)
	case *notionapi.CodeBlock:
		return richText(b.Code.RichText)
	default:
		return ""
	}
}

func richText(parts []notionapi.RichText) string {
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString(part.PlainText)
	}
	return strings.TrimSpace(sb.String())
}

func pageTitle(page *notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			return richText(title.Title)
		}
	}
	return ""
}
