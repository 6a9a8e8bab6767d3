package service

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/internal/repository"
	"github.com/elyaddev/Silo/pkg/errcode"
	"github.com/mbeoliero/kit/log"
)

// Search limits
const (
	MinSearchQueryLength = 2
	MaxSearchResults     = 10
	snippetRadius        = 60
)

// SearchService finds discussions by whole-word matches over titles,
// bodies and replies. The database does a cheap substring prefilter and
// the word-boundary check happens here.
type SearchService struct {
	discussionRepo *repository.DiscussionRepo
	messageRepo    *repository.MessageRepo
}

// NewSearchService creates a new SearchService
func NewSearchService(discussionRepo *repository.DiscussionRepo, messageRepo *repository.MessageRepo) *SearchService {
	return &SearchService{
		discussionRepo: discussionRepo,
		messageRepo:    messageRepo,
	}
}

// SearchResult is one matched discussion with a snippet around the hit
type SearchResult struct {
	DiscussionId string `json:"discussion_id"`
	RoomId       string `json:"room_id"`
	Title        string `json:"title"`
	Snippet      string `json:"snippet"`
	MatchedIn    string `json:"matched_in"` // title / body / reply
	CreatedAt    int64  `json:"created_at"`
}

// Search runs a whole-word search. Queries shorter than two characters
// are rejected; results are unique per discussion, newest first, at
// most MaxSearchResults.
func (s *SearchService) Search(ctx context.Context, query string) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchQueryLength {
		return nil, errcode.ErrInvalidParam
	}

	matcher, err := wordMatcher(query)
	if err != nil {
		return nil, errcode.ErrInvalidParam
	}

	discussions, err := s.discussionRepo.SearchByWord(ctx, query, 50)
	if err != nil {
		log.CtxError(ctx, "search discussions failed: %v", err)
		return nil, errcode.ErrInternalServer
	}
	replies, err := s.messageRepo.SearchByWord(ctx, query, 50)
	if err != nil {
		log.CtxError(ctx, "search replies failed: %v", err)
		return nil, errcode.ErrInternalServer
	}

	seen := make(map[string]*SearchResult)

	for _, d := range discussions {
		if matcher.MatchString(d.Title) {
			seen[d.Id] = &SearchResult{
				DiscussionId: d.Id,
				RoomId:       d.RoomId,
				Title:        d.Title,
				Snippet:      snippet(d.Title, matcher),
				MatchedIn:    "title",
				CreatedAt:    d.CreatedAt,
			}
		} else if matcher.MatchString(d.Body) {
			seen[d.Id] = &SearchResult{
				DiscussionId: d.Id,
				RoomId:       d.RoomId,
				Title:        d.Title,
				Snippet:      snippet(d.Body, matcher),
				MatchedIn:    "body",
				CreatedAt:    d.CreatedAt,
			}
		}
	}

	// Collect reply matches and attach them to their discussions
	var replyDiscussionIds []string
	replyMatches := make(map[string]*entity.Message)
	for _, m := range replies {
		if !matcher.MatchString(m.Content) {
			continue
		}
		if _, exists := seen[m.DiscussionId]; exists {
			continue
		}
		if _, exists := replyMatches[m.DiscussionId]; exists {
			continue
		}
		replyMatches[m.DiscussionId] = m
		replyDiscussionIds = append(replyDiscussionIds, m.DiscussionId)
	}

	if len(replyDiscussionIds) > 0 {
		parents, err := s.discussionRepo.GetByIds(ctx, replyDiscussionIds)
		if err != nil {
			log.CtxError(ctx, "load reply discussions failed: %v", err)
			return nil, errcode.ErrInternalServer
		}
		for _, d := range parents {
			m := replyMatches[d.Id]
			if m == nil {
				continue
			}
			seen[d.Id] = &SearchResult{
				DiscussionId: d.Id,
				RoomId:       d.RoomId,
				Title:        d.Title,
				Snippet:      snippet(m.Content, matcher),
				MatchedIn:    "reply",
				CreatedAt:    m.CreatedAt,
			}
		}
	}

	results := make([]*SearchResult, 0, len(seen))
	for _, r := range seen {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt > results[j].CreatedAt
	})
	if len(results) > MaxSearchResults {
		results = results[:MaxSearchResults]
	}
	return results, nil
}

// wordMatcher compiles a case-insensitive whole-word matcher for the
// query. The query itself is quoted, so regex metacharacters in user
// input are literal.
func wordMatcher(query string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)\b` + regexp.QuoteMeta(query) + `\b`)
}

// snippet cuts a window of text around the first match
func snippet(text string, matcher *regexp.Regexp) string {
	loc := matcher.FindStringIndex(text)
	if loc == nil {
		return previewText(text)
	}

	runes := []rune(text)
	// Byte offsets to rune offsets
	start := len([]rune(text[:loc[0]]))
	end := len([]rune(text[:loc[1]]))

	from := start - snippetRadius
	if from < 0 {
		from = 0
	}
	to := end + snippetRadius
	if to > len(runes) {
		to = len(runes)
	}

	out := string(runes[from:to])
	if from > 0 {
		out = "…" + out
	}
	if to < len(runes) {
		out = out + "…"
	}
	return out
}
