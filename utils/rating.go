package utils

import "gorm.io/gorm"

// RecalculateBookRating re-derives the denormalized average_rating and
// total_ratings columns of a book from its live comments, in one compound
// statement. Must be called on the same transaction as the comment
// insert/delete that triggered it, so the projection can never be observed
// out of step with the comment set. When the last comment goes away the
// average falls back to 0.
func RecalculateBookRating(db *gorm.DB, bookID uint) error {
	return db.Exec(`
		UPDATE books
		SET average_rating = COALESCE((SELECT ROUND(AVG(rating), 1) FROM comments WHERE book_id = ? AND deleted_at IS NULL), 0),
		    total_ratings = (SELECT COUNT(*) FROM comments WHERE book_id = ? AND deleted_at IS NULL)
		WHERE id = ?`,
		bookID, bookID, bookID).Error
}
