package handoff

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myabroadportal/portal/backend/internal/model/lead"
)

func TestFormatChatLead(t *testing.T) {
	f := New("https://wa.me/", "917990675093")
	rec := lead.Record{Source: lead.SourceChat, Name: "Asha", Phone: "9999999999"}

	link := f.Format(rec, "Canada Visa")

	require.True(t, strings.HasPrefix(link, "https://wa.me/917990675093?text="), link)
	u, err := url.Parse(link)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "*Asha*")
	assert.Contains(t, text, "*9999999999*")
	assert.Contains(t, text, "*Canada Visa*")
}

func TestFormatChatLeadDefaultsInterest(t *testing.T) {
	msg := Message(lead.Record{Source: lead.SourceChat, Name: "A", Phone: "1"}, "")
	assert.Equal(t, "Hi, I chatted with Priya (AI). I am interested in *Overseas Education*. My Name is *A* and Phone is *1*. Please guide me.", msg)
}

func TestLinkHasNoRawWhitespace(t *testing.T) {
	f := New("", "123")
	message := "Line one\nLine two\twith tab & ampersand + plus = equals ?query #hash ₹15 Lakhs"

	link := f.Link(message)

	assert.True(t, strings.HasPrefix(link, DefaultBaseURL+"/123?text="))
	assert.NotContains(t, link, " ")
	assert.NotContains(t, link, "\n")
	assert.NotContains(t, link, "\t")
	assert.Contains(t, link, "%20")

	query := link[strings.Index(link, "?")+1:]
	assert.NotContains(t, query[len("text="):], "&")
	assert.NotContains(t, query[len("text="):], "+")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, message, u.Query().Get("text"))
}

func TestFormatQuizAndMatchmaker(t *testing.T) {
	f := New(DefaultBaseURL, "1")

	quiz := f.Format(lead.Record{Source: lead.SourceQuiz, Name: "Ravi", Phone: "+91 98"}, "Band 8.0 - 8.5")
	u, err := url.Parse(quiz)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("text"), "My Predicted Band is Band 8.0 - 8.5")
	assert.Contains(t, u.Query().Get("text"), "+91 98")

	match := f.Format(lead.Record{
		Source: lead.SourceMatchmaker, Name: "Meera", Phone: "55",
		Goal: "Easy PR & Settlement", Budget: "₹25 Lakhs + (No Limit)",
	}, "Canada & Australia")
	u, err = url.Parse(match)
	require.NoError(t, err)
	text := u.Query().Get("text")
	assert.Contains(t, text, "My Goal is Easy PR & Settlement")
	assert.Contains(t, text, "It recommended Canada & Australia")
}
