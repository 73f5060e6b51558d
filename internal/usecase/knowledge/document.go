package knowledge

import (
	"strings"

	"github.com/kailas-cloud/askdb/internal/domain/user"
)

const documentTemplate = `This person works as a {job} and lives in {country}.
They use a {device} as their primary device and drive a {car}.
They speak {language} and identify as {gender}.
Overall, this is a {job} based in {country} who uses a {device} and drives a {car}.`

// Document renders the knowledge-base text for u. Attributes are lower-cased;
// missing ones render empty.
func Document(u user.User) string {
	lower := strings.ToLower
	return strings.NewReplacer(
		"{job}", lower(u.JobTitle),
		"{country}", lower(u.Country),
		"{device}", lower(u.Device),
		"{car}", lower(u.Car),
		"{language}", lower(u.Language),
		"{gender}", lower(u.Gender),
	).Replace(documentTemplate)
}
