package repository

import (
	"context"
	"errors"

	"github.com/elyaddev/Silo/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RoomRepo is the repository for room operations
type RoomRepo struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewRoomRepo creates a new RoomRepo
func NewRoomRepo(db *gorm.DB, rdb *redis.Client) *RoomRepo {
	return &RoomRepo{db: db, rdb: rdb}
}

// Create creates a new room
func (r *RoomRepo) Create(ctx context.Context, room *entity.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetById gets a room by id
func (r *RoomRepo) GetById(ctx context.Context, id string) (*entity.Room, error) {
	var room entity.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// List lists all rooms ordered by name
func (r *RoomRepo) List(ctx context.Context) ([]*entity.Room, error) {
	var rooms []*entity.Room
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
