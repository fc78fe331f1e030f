package cliContext

type Context struct {
	LogLevel   *string `env:"THINKSTREAM_LOG_LEVEL" enum:"error,warn,info,debug,trace" help:"Set the level of logs to output [${enum}]"`
	LogFormat  *string `env:"THINKSTREAM_LOG_FORMAT" default:"default" enum:"default,text,json" help:"Set the format of logs to output [${enum}]"`
	ConfigFile string  `env:"THINKSTREAM_CONFIG,CONFIG_FILE" name:"config" type:"path" help:"YAML file with the reasoning configuration (tag pairs, prefix, failure policy, schema)"`
}
