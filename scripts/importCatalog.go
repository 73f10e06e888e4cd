package main

import (
	"biblio/config"
	"biblio/database"
	"biblio/models"
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"
)

// Imports catalog entries from catalog.csv for files that were copied into
// the uploads directory out of band. Expected columns: user_id, title,
// author, genre, description, file_path, file_size, cover_image.
func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	// Open CSV file
	file, err := os.Open("catalog.csv")
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	// Create CSV reader
	reader := csv.NewReader(file)

	// Read all records
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Skip header row
	header := records[0]
	log.Printf("CSV Headers: %v", header)
	log.Printf("Total rows to import: %d", len(records)-1)

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range header {
		headerIndex[strings.TrimSpace(h)] = i
	}

	field := func(row []string, name string) string {
		idx, ok := headerIndex[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	inserted := 0
	skipped := 0

	for i, row := range records[1:] {
		title := field(row, "title")
		filePath := field(row, "file_path")
		if title == "" || filePath == "" {
			log.Printf("Row %d: missing title or file_path, skipping", i+1)
			skipped++
			continue
		}

		userID, err := strconv.ParseUint(field(row, "user_id"), 10, 64)
		if err != nil {
			log.Printf("Row %d: invalid user_id, skipping", i+1)
			skipped++
			continue
		}

		fileSize, _ := strconv.ParseInt(field(row, "file_size"), 10, 64)

		// Skip entries already imported for the same file
		var existing models.Book
		if err := database.Database.Db.Where("file_path = ?", filePath).First(&existing).Error; err == nil {
			skipped++
			continue
		}

		book := models.Book{
			UserID:      uint(userID),
			Title:       title,
			Author:      field(row, "author"),
			Genre:       field(row, "genre"),
			Description: field(row, "description"),
			FilePath:    filePath,
			FileSize:    fileSize,
			CoverImage:  field(row, "cover_image"),
		}

		if err := database.Database.Db.Create(&book).Error; err != nil {
			log.Printf("Row %d: failed to insert %q: %v", i+1, title, err)
			skipped++
			continue
		}
		inserted++
	}

	log.Printf("Import finished: %d inserted, %d skipped", inserted, skipped)
}
