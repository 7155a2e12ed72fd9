// Package utils holds the ambient helpers shared by the coremigration commands:
// the Viper-backed ConfigurationLoader, the zap LoggerFactory and the accessor
// for values carried on command contexts.
package utils
