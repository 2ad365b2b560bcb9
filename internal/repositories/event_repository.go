package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"storefront/internal/models/db_models"
)

// EventRepository is the processed-event set. The primary key on
// stripe_events.id is the serialization point between concurrent
// deliveries of the same event.
type EventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// Record inserts the event id and reports whether this call created it.
	Record(ctx context.Context, eventID, eventType string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (e *eventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := e.db.WithContext(ctx).
		Model(&db_models.StripeEvent{}).
		Where("id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (e *eventRepository) Record(ctx context.Context, eventID, eventType string) (bool, error) {
	res := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db_models.StripeEvent{ID: eventID, Type: eventType})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (e *eventRepository) Delete(ctx context.Context, eventID string) error {
	return e.db.WithContext(ctx).Delete(&db_models.StripeEvent{}, "id = ?", eventID).Error
}
