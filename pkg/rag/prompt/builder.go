package prompt

import (
	"fmt"
	"sort"
	"strings"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/constant"
	"wine-sommelier-be/internal/entity"
	"wine-sommelier-be/pkg/llm"
)

// Builder assembles the generation chat history for a classified query: a
// category-specific system prompt, the capped prior turns, and a user
// message carrying the retrieved items and stored preferences.
type Builder struct {
	prompts *config.Prompts
}

func NewBuilder(prompts *config.Prompts) *Builder {
	return &Builder{prompts: prompts}
}

// Messages builds the full chat history for one generation call. History
// comes from userContext.Recent (newest first) and is capped at the last
// HistoryTurnLimit turns, replayed in chronological order.
func (b *Builder) Messages(
	category string,
	query string,
	userName string,
	userContext *entity.UserContext,
	items []*entity.ScoredItem,
) []llm.Message {
	messages := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: b.systemPrompt(category)},
	}
	messages = append(messages, historyMessages(userContext)...)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: b.userContent(category, query, userName, userContext, items),
	})
	return messages
}

func (b *Builder) systemPrompt(category string) string {
	switch category {
	case constant.CategoryWineTheory:
		return b.prompts.WineTheory
	case constant.CategorySecretMessage:
		return b.prompts.SecretMessage
	default:
		return b.prompts.WineSearch
	}
}

func (b *Builder) userContent(
	category string,
	query string,
	userName string,
	userContext *entity.UserContext,
	items []*entity.ScoredItem,
) string {
	var content strings.Builder

	if category == constant.CategorySecretMessage {
		writeSecretIdentities(&content, b.prompts.SecretRecipient, userName)
	} else {
		writeItems(&content, items)
		writePreferences(&content, userContext)
	}

	content.WriteString("<consulta>\n")
	content.WriteString(query)
	content.WriteString("\n</consulta>")
	return content.String()
}

// historyMessages replays the most recent turns in chronological order. The
// Recent slice arrives newest first.
func historyMessages(userContext *entity.UserContext) []llm.Message {
	if userContext == nil || len(userContext.Recent) == 0 {
		return nil
	}

	recent := userContext.Recent
	if len(recent) > constant.HistoryTurnLimit {
		recent = recent[:constant.HistoryTurnLimit]
	}

	messages := make([]llm.Message, 0, 2*len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		turn := recent[i]
		messages = append(messages,
			llm.Message{Role: constant.ChatMessageRoleUser, Content: turn.Query},
			llm.Message{Role: constant.ChatMessageRoleAssistant, Content: turn.Response},
		)
	}
	return messages
}

func writeItems(content *strings.Builder, items []*entity.ScoredItem) {
	wines := make([]*entity.ScoredItem, 0, len(items))
	excerpts := make([]*entity.ScoredItem, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case entity.ItemKindWine:
			wines = append(wines, item)
		case entity.ItemKindKnowledge:
			excerpts = append(excerpts, item)
		}
	}

	if len(wines) > 0 {
		content.WriteString("<vinos_encontrados>\n")
		for _, item := range wines {
			content.WriteString("- ")
			content.WriteString(describeWine(item.Wine))
			content.WriteString("\n")
		}
		content.WriteString("</vinos_encontrados>\n\n")
	}

	if len(excerpts) > 0 {
		content.WriteString("<conocimiento>\n")
		for _, item := range excerpts {
			if item.Excerpt.Section != "" {
				content.WriteString(fmt.Sprintf("[%s]\n", item.Excerpt.Section))
			}
			content.WriteString(item.Excerpt.Text)
			content.WriteString("\n\n")
		}
		content.WriteString("</conocimiento>\n\n")
	}
}

func describeWine(wine *entity.WineRecord) string {
	parts := []string{wine.Name}
	if wine.Style != "" {
		parts = append(parts, wine.Style)
	}
	if wine.Region != "" {
		parts = append(parts, wine.Region)
	}
	if wine.Grape != "" {
		parts = append(parts, wine.Grape)
	}
	if wine.Price > 0 {
		parts = append(parts, fmt.Sprintf("%.2f€", wine.Price))
	}
	if wine.Pairing != "" {
		parts = append(parts, "marida con "+wine.Pairing)
	}
	return strings.Join(parts, ", ")
}

func writePreferences(content *strings.Builder, userContext *entity.UserContext) {
	if userContext == nil {
		return
	}
	if len(userContext.Preferences) == 0 && len(userContext.FavoriteWines) == 0 && len(userContext.TopRated) == 0 {
		return
	}

	content.WriteString("<preferencias>\n")
	// Map iteration order varies; sorted keys keep the prompt stable
	// across identical requests.
	keys := make([]string, 0, len(userContext.Preferences))
	for key := range userContext.Preferences {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		content.WriteString(fmt.Sprintf("%s: %v\n", key, userContext.Preferences[key]))
	}
	if len(userContext.FavoriteWines) > 0 {
		content.WriteString("favoritos: ")
		content.WriteString(strings.Join(userContext.FavoriteWines, ", "))
		content.WriteString("\n")
	}
	for _, rated := range userContext.TopRated {
		content.WriteString(fmt.Sprintf("valoró %s con %.1f/5\n", rated.WineName, rated.AvgRating))
	}
	content.WriteString("</preferencias>\n\n")
}

func writeSecretIdentities(content *strings.Builder, recipient, userName string) {
	sender := userName
	if sender == "" {
		sender = "un admirador secreto"
	}
	content.WriteString("<destinataria>\n")
	content.WriteString(recipient)
	content.WriteString("\n</destinataria>\n\n")
	content.WriteString("<remitente>\n")
	content.WriteString(sender)
	content.WriteString("\n</remitente>\n\n")
}
