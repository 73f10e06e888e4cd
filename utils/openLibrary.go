package utils

import (
	"biblio/config"
	"biblio/database"
	"biblio/models"
	"encoding/json"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

type openLibraryResponse struct {
	Docs []struct {
		Title         string   `json:"title"`
		FirstSentence []string `json:"first_sentence"`
	} `json:"docs"`
}

// EnrichBookDescription fills in a missing book description from the Open
// Library search API. Best effort: any failure is logged and the book is left
// untouched. The update is guarded so a description written by the uploader
// in the meantime is never overwritten.
func EnrichBookDescription(bookID uint, title, author string) {
	if config.AppConfig.OpenLibraryURL == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetQueryParams(map[string]string{
			"title":  title,
			"author": author,
			"limit":  "1",
			"fields": "title,first_sentence",
		}).
		Get(config.AppConfig.OpenLibraryURL)
	if err != nil || resp.StatusCode() != 200 {
		log.Printf("Open Library lookup failed for %q: %v", title, err)
		return
	}

	var olResp openLibraryResponse
	if err := json.Unmarshal(resp.Body(), &olResp); err != nil {
		log.Printf("Invalid Open Library response for %q: %v", title, err)
		return
	}
	if len(olResp.Docs) == 0 || len(olResp.Docs[0].FirstSentence) == 0 {
		return
	}

	result := database.Database.Db.Model(&models.Book{}).
		Where("id = ? AND (description IS NULL OR description = '')", bookID).
		Update("description", olResp.Docs[0].FirstSentence[0])
	if result.Error != nil {
		log.Printf("Error saving enriched description for book %d: %v", bookID, result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Enriched description for book %d from Open Library", bookID)
	}
}
