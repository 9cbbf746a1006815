package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/charsync/internal/hydrate"
	"github.com/l1jgo/charsync/internal/world"
)

// ErrNameTaken is returned when another character already uses the name.
var ErrNameTaken = errors.New("character name taken")

// NewCharacter describes a character creation request.
type NewCharacter struct {
	Name   string
	Race   uint8
	Class  uint8
	Gender uint8
}

// CreateCharacter stores a level 1 character at its race/class start
// position with the starting skills and spells learned.
func CreateCharacter(ctx context.Context, deps *Deps, accountID int64, req NewCharacter) (world.GUID, error) {
	name := hydrate.NormalizeName(req.Name)
	if !hydrate.ValidName(name) {
		return 0, hydrate.ErrInvalidName
	}
	if req.Gender > 1 {
		return 0, hydrate.ErrInvalidAppearance
	}
	chars := deps.Catalog.Characters
	info := chars.CreateInfo(req.Race, req.Class)
	if info == nil {
		return 0, hydrate.ErrInvalidRaceClass
	}
	class := chars.Class(req.Class)

	existing, err := deps.CharRepo.FindByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != 0 {
		return 0, ErrNameTaken
	}

	c := world.CharacterData{
		GUID:       world.GUID(deps.IDs.Next(world.IDCharacter)),
		AccountID:  accountID,
		Name:       name,
		Race:       req.Race,
		Class:      req.Class,
		Gender:     req.Gender,
		Level:      1,
		Position:   info.Start,
		Health:     class.BaseHealth,
		ActiveSpec: class.DefaultSpec,
		RestInArea: true,
		LogoutTime: deps.Clock.Now().Unix(),
	}
	for _, idx := range class.Powers {
		c.Power[idx] = class.BasePower[idx]
	}

	p := world.CreatePlayer(c)
	p.SetHomeBind(world.HomeBind{
		MapID: info.Start.MapID, ZoneID: info.Start.ZoneID,
		X: info.Start.X, Y: info.Start.Y, Z: info.Start.Z,
	})
	for _, id := range info.Skills {
		if sk := deps.Catalog.Skills.Get(id); sk != nil {
			value, maxValue := sk.Bounds(1, 1)
			p.Skills.Learn(world.Skill{ID: id, Value: value, Max: maxValue})
		}
	}
	for _, id := range info.Spells {
		p.Spells.Learn(id)
	}

	if _, err := deps.Flusher.Flush(ctx, p); err != nil {
		return 0, fmt.Errorf("create character %s: %w", name, err)
	}
	deps.Log.Info("character created",
		zap.Int64("account", accountID),
		zap.Int64("guid", int64(c.GUID)),
		zap.String("name", name),
	)
	return c.GUID, nil
}
