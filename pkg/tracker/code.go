package tracker

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raids-lab/tracker/dao/model"
)

const maxSlugLen = 6

// slugFromName derives the module slug that prefixes task codes: the first
// letters and digits of the name, upper-cased, capped at maxSlugLen. A name
// with nothing usable falls back to a short uuid fragment so the slug is
// never empty.
func slugFromName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			if b.Len() >= maxSlugLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return strings.ToUpper(uuid.NewString()[:maxSlugLen])
	}
	return b.String()
}

// nextTaskCode allocates the next human-readable code for a task under the
// given module. The counter is bumped with an atomic UPDATE expression, so
// the row lock of the enclosing transaction serializes concurrent creations
// and two callers can never observe the same value. The counter never goes
// backwards: deleted tasks leave a permanent gap instead of freeing a code.
func nextTaskCode(tx *gorm.DB, moduleID uint) (string, error) {
	res := tx.Model(&model.Module{}).Where("id = ?", moduleID).
		UpdateColumn("task_counter", gorm.Expr("task_counter + ?", 1))
	if res.Error != nil {
		return "", mapDBErr(res.Error, "increment task counter")
	}
	if res.RowsAffected == 0 {
		return "", wrapf(ErrNotFound, "module %d", moduleID)
	}
	var mod model.Module
	if err := tx.First(&mod, moduleID).Error; err != nil {
		return "", mapDBErr(err, "reload module")
	}
	return fmt.Sprintf("%s-%d", mod.Slug, mod.TaskCounter), nil
}
