package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/bonder-network/bonder/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

var (
	ErrCycleVars                 = fmt.Errorf("cycle vars")
	ErrMissingVars               = fmt.Errorf("missing vars")
	ErrUnsupportedConfigFileType = fmt.Errorf("unsupported config file type")
	ErrInvalidSyntax             = fmt.Errorf("invalid toml syntax")

	unquotedVarRe  = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	quotedIntVarRe = regexp.MustCompile(`=\s*\"\{\{([^}:]+:int)\}\}\"`)
	intVarRe       = regexp.MustCompile(`\{\{([^}:]+:int)\}\}`)
)

// FileData is a named piece of configuration in TOML format
type FileData struct {
	Name    string
	Content string
}

// ConfigRender merges a list of configuration files and resolves the {{vars}} they use.
// A var is defined by any top level key of the merged files or by an environment variable
// named <EnvPrefix>_<var>
type ConfigRender struct {
	// FilesData are merged in order, later files override the earlier ones
	FilesData []FileData
	// LookupEnvFunc resolves environment variables, typically os.LookupEnv
	LookupEnvFunc func(key string) (string, bool)
	EnvPrefix     string
}

func NewConfigRender(filesData []FileData, envPrefix string) *ConfigRender {
	return &ConfigRender{
		FilesData:     filesData,
		LookupEnvFunc: os.LookupEnv,
		EnvPrefix:     envPrefix,
	}
}

// Render merges all files and resolves the vars inside
func (c *ConfigRender) Render() (string, error) {
	mergedData, err := c.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return c.ResolveVars(mergedData)
}

// Merge loads every file on the same tree and returns it as TOML, with the vars unresolved
func (c *ConfigRender) Merge() (string, error) {
	k := koanf.New(".")
	for _, data := range c.FilesData {
		dataToml := quoteVars(data.Content)
		if err := k.Load(rawbytes.Provider([]byte(dataToml)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err:%v.FileData: %v", data.Name, err, dataToml)
			return "", fmt.Errorf("fail to load converted template %s to toml. Err: %w", data.Name, err)
		}
	}
	marshaled, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteVars(string(marshaled)), nil
}

// ResolveVars replaces the vars of fullConfigData by their values. Vars whose value is another
// var are resolved iteratively
func (c *ConfigRender) ResolveVars(fullConfigData string) (string, error) {
	tpl, values, err := c.readTemplateAndValues(fullConfigData)
	if err != nil {
		return "", err
	}
	rendered := removeTypeMarks(c.executeTemplate(tpl, values))
	// a var without value anywhere is missing, not part of a cycle
	if missing := c.missingVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	finalConfigData, err := c.ResolveCycle(rendered)
	if err != nil {
		return fullConfigData, err
	}
	return finalConfigData, nil
}

// ResolveCycle keeps rendering while vars remain. Each pass must resolve at least one var,
// otherwise the remaining ones depend on each other (A={{B}} and B={{A}})
func (c *ConfigRender) ResolveCycle(partialResolvedConfigData string) (string, error) {
	data := unquoteVars(partialResolvedConfigData)
	pending := varsOf(data)
	if len(pending) == 0 {
		return partialResolvedConfigData, nil
	}
	log.Debugf("ResolveCycle: pending vars: %v", pending)
	for len(pending) > 0 {
		previous := pending
		tpl, values, err := c.readTemplateAndValues(data)
		if err != nil {
			log.Errorf("resolveCycle: fails to read values. Err: %v. Data:%s", err, data)
			return "", fmt.Errorf("fails to read template ResolveCycle. Err: %w", err)
		}
		data = removeTypeMarks(unquoteVars(c.executeTemplate(tpl, values)))
		pending = varsOf(data)
		if len(pending) == len(previous) {
			return partialResolvedConfigData, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return data, nil
}

// readTemplateAndValues expects unquoted vars: A={{B}} and not A="{{B}}"
func (c *ConfigRender) readTemplateAndValues(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err:%w", err)
	}
	out := quoteVars(data)
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(out)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing data koanf.Load.Content: %s.  Err: %w", out, err)
	}
	return tpl, k.All(), nil
}

// quoteVars turns A={{B}} into A="{{B:int}}" so the file is valid TOML
func quoteVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}:int}}"`)
}

// unquoteVars reverts quoteVars
func unquoteVars(data string) string {
	return quotedIntVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := quotedIntVarRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return "= {{" + strings.Split(submatch[1], ":")[0] + "}}"
		}
		return match
	})
}

func removeTypeMarks(data string) string {
	return intVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := intVarRe.FindStringSubmatch(match)
		if len(submatch) > 1 {
			return "{{" + strings.Split(submatch[1], ":")[0] + "}}"
		}
		return match
	})
}

func (c *ConfigRender) executeTemplate(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := c.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return w.Write([]byte(fmt.Sprintf("%v", v)))
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

func (c *ConfigRender) missingVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var missing []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if _, ok := c.lookupEnv(tag); ok {
			return 0, nil
		}
		if _, ok := values[tag]; !ok && !contains(missing, tag) {
			missing = append(missing, tag)
		}
		return 0, nil
	})
	return missing
}

func (c *ConfigRender) lookupEnv(tag string) (string, bool) {
	return c.LookupEnvFunc(c.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func contains(vars []string, search string) bool {
	for _, v := range vars {
		if v == search {
			return true
		}
	}
	return false
}

// varsOf returns every var used in configData, repeated as many times as it is used
func varsOf(configData string) []string {
	tpl, err := fasttemplate.NewTemplate(configData, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

func readFileToString(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// checkTomlSyntax reports the position of the first syntax error of a file
func checkTomlSyntax(name, data string) error {
	var v map[string]interface{}
	err := gotoml.Unmarshal([]byte(quoteVars(data)), &v)
	if err == nil {
		return nil
	}
	var decodeErr *gotoml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("%w: %s:%d:%d: %s", ErrInvalidSyntax, name, row, col, decodeErr.Error())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidSyntax, name, err.Error())
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser())
		if err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
