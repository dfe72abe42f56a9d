// defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets viper defaults for all configuration parameters.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "DigitNet-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "digitnet.log")

	viper.SetDefault("model.path", "models/mnist.tflite")
	viper.SetDefault("model.threads", 0)
	viper.SetDefault("model.timeout", 10)

	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.bodylimit", "5M")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "digitnet.db")
	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "digitnet")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "digitnet")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.timeout", 5)

	viper.SetDefault("imagestore.enabled", true)
	viper.SetDefault("imagestore.required", false)
	viper.SetDefault("imagestore.type", "disk")
	viper.SetDefault("imagestore.path", "images/")
	viper.SetDefault("imagestore.minio.endpoint", "")
	viper.SetDefault("imagestore.minio.accesskey", "")
	viper.SetDefault("imagestore.minio.secretkey", "")
	viper.SetDefault("imagestore.minio.bucket", "digitnet-images")
	viper.SetDefault("imagestore.minio.usessl", false)
}
