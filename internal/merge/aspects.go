package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/migratool/internal/dbx"
	"github.com/dmitrijs2005/migratool/internal/logging"
	"github.com/dmitrijs2005/migratool/internal/transform"
)

type aspectSeed struct {
	ID          string
	Name        string
	Description string
	RatioWidth  int
	RatioHeight int
}

// requiredAspects are the two classification rows every migrated image
// references. Ratios are in the display units of the new schema.
var requiredAspects = []aspectSeed{
	{
		ID:          transform.AspectCardBackground,
		Name:        "Card Background",
		Description: "Portrait card art matching the ID-1 card ratio",
		RatioWidth:  768,
		RatioHeight: 1220,
	},
	{
		ID:          transform.AspectSegaPassname,
		Name:        "SEGA Passname",
		Description: "Landscape passname art matching the PASSNAME ratio",
		RatioWidth:  338,
		RatioHeight: 112,
	},
}

// EnsureRequiredAspects checks that both fixed aspect rows exist in
// tbl_image_aspect and inserts whichever are missing. Idempotent and
// conflict-safe; must run before any image is classified.
func EnsureRequiredAspects(ctx context.Context, tgt dbx.DBTX, log logging.Logger) error {
	existing, err := collectStringSet(ctx, tgt,
		`SELECT id FROM tbl_image_aspect WHERE id IN ($1, $2)`,
		transform.AspectCardBackground, transform.AspectSegaPassname)
	if err != nil {
		return err
	}

	var missing []aspectSeed
	for _, seed := range requiredAspects {
		if _, ok := existing[seed.ID]; !ok {
			missing = append(missing, seed)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	values := make([]string, 0, len(missing))
	args := make([]any, 0, len(missing)*5)
	ids := make([]string, 0, len(missing))
	for i, seed := range missing {
		base := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, seed.ID, seed.Name, seed.Description, seed.RatioWidth, seed.RatioHeight)
		ids = append(ids, seed.ID)
	}

	query := `INSERT INTO tbl_image_aspect (id, name, description, ratio_width_unit, ratio_height_unit) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (id) DO NOTHING`

	if _, err := tgt.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	log.Info(ctx, "seeded missing image aspects", "ids", strings.Join(ids, ","))
	return nil
}
