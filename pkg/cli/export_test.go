package cli

var EnvFileFromArgs = envFileFromArgs

var GetIndexConfig = getIndexConfig
