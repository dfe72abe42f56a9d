// validate.go settings validation
package conf

import (
	"fmt"

	"github.com/digitnet/digitnet-go/internal/errors"
)

// ValidateSettings checks the loaded settings for inconsistencies that would
// prevent the service from starting.
func ValidateSettings(settings *Settings) error {
	if settings.Model.Path == "" {
		return errors.Newf("model.path must not be empty").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.Model.Timeout <= 0 {
		return errors.Newf("model.timeout must be positive, got %d", settings.Model.Timeout).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return errors.Newf("only one database output can be enabled at a time").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return errors.Newf("no database output enabled, enable output.sqlite or output.mysql").
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.Output.Timeout <= 0 {
		return errors.Newf("output.timeout must be positive, got %d", settings.Output.Timeout).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if settings.ImageStore.Enabled {
		switch settings.ImageStore.Type {
		case "disk":
			if settings.ImageStore.Path == "" {
				return errors.Newf("imagestore.path must be set for the disk backend").
					Component("conf").
					Category(errors.CategoryConfiguration).
					Build()
			}
		case "minio":
			if settings.ImageStore.Minio.Endpoint == "" || settings.ImageStore.Minio.Bucket == "" {
				return errors.Newf("imagestore.minio.endpoint and imagestore.minio.bucket must be set for the minio backend").
					Component("conf").
					Category(errors.CategoryConfiguration).
					Build()
			}
		default:
			return errors.New(fmt.Errorf("unknown imagestore.type %q, expected disk or minio", settings.ImageStore.Type)).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Build()
		}
	}

	return nil
}
