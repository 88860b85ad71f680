package tsgen

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/thellimist/openapi-client-generator/internal/nameutil"
)

// Client is the intermediate representation rendered into TypeScript.
type Client struct {
	Server   string
	Version  string
	Models   []*Model
	Services []*Service
}

// Model is one named component schema.
type Model struct {
	Name        string
	Description string
	Deprecated  bool
	// Type is the TypeScript type expression; unused when Enum is set.
	Type    string
	Enum    []EnumMember
	Imports []string
	// Schema is the JSON form emitted under schemas/.
	Schema json.RawMessage
}

// IsEnum reports whether the model renders as a TypeScript enum.
func (m *Model) IsEnum() bool { return len(m.Enum) > 0 }

// EnumMember is one `NAME = value` entry of an enum model.
type EnumMember struct {
	Name  string
	Value string
}

// Service groups operations sharing a tag.
type Service struct {
	Name       string
	Operations []*Operation
	Imports    []string
}

// Operation is one HTTP operation rendered as a static service method.
type Operation struct {
	Name        string
	Method      string
	Path        string
	Summary     string
	Description string
	Deprecated  bool

	Parameters []*Parameter
	PathParams []*Parameter
	Query      []*Parameter
	Headers    []*Parameter
	Cookies    []*Parameter
	FormData   []*Parameter
	Body       *Parameter
	MediaType  string

	Result string
	Errors []ErrorResponse
}

// Parameter is one argument of a service method.
type Parameter struct {
	Name        string // identifier in the generated signature
	Prop        string // name on the wire
	Type        string
	Required    bool
	Description string
	Default     string
}

// ErrorResponse maps a non-success status code to its description.
type ErrorResponse struct {
	Code        int
	Description string
}

var methodOrder = []string{
	http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
	http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodTrace,
}

// Build converts a loaded document into the client representation.
func Build(doc *openapi3.T, useUnionTypes bool) *Client {
	c := &Client{Server: serverURL(doc), Version: "1.0"}
	if doc.Info != nil && doc.Info.Version != "" {
		c.Version = doc.Info.Version
	}

	names := modelNames(doc)
	mapper := newTypeMapper(names)

	if doc.Components != nil {
		for _, key := range sortedKeys(doc.Components.Schemas) {
			if m := buildModel(mapper, names[componentRef(key)], doc.Components.Schemas[key], useUnionTypes); m != nil {
				c.Models = append(c.Models, m)
			}
		}
	}

	c.Services = buildServices(doc, mapper)
	return c
}

// modelNames assigns a unique TypeScript identifier to each component schema.
func modelNames(doc *openapi3.T) map[string]string {
	names := make(map[string]string)
	if doc.Components == nil {
		return names
	}
	used := make(map[string]bool)
	for _, key := range sortedKeys(doc.Components.Schemas) {
		name := uniqueName(nameutil.Identifier(key), used)
		names[componentRef(key)] = name
	}
	return names
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}

func buildModel(mapper *typeMapper, name string, ref *openapi3.SchemaRef, useUnionTypes bool) *Model {
	if ref == nil {
		return nil
	}
	m := &Model{Name: name}
	if ref.Value != nil {
		m.Description = ref.Value.Description
		m.Deprecated = ref.Value.Deprecated
		if data, err := json.Marshal(ref.Value); err == nil {
			m.Schema = data
		}
	}
	if len(m.Schema) == 0 {
		m.Schema = json.RawMessage("{}")
	}

	// A bare ref is an alias of another model.
	if ref.Ref != "" {
		m.Type = mapper.typeOf(ref, 0)
		m.Imports = mapper.takeImports()
		return m
	}

	if s := ref.Value; s != nil && len(s.Enum) > 0 && !useUnionTypes && enumerable(s.Enum) {
		used := make(map[string]bool)
		for _, v := range s.Enum {
			m.Enum = append(m.Enum, EnumMember{Name: uniqueName(enumMemberName(v), used), Value: literal(v)})
		}
		return m
	}

	m.Type = mapper.typeOf(ref, 0)
	m.Imports = without(mapper.takeImports(), name)
	return m
}

// enumerable reports whether every value can be a TypeScript enum initializer.
func enumerable(values []any) bool {
	for _, v := range values {
		switch v.(type) {
		case string, float64:
		default:
			return false
		}
	}
	return true
}

func without(list []string, name string) []string {
	out := list[:0]
	for _, s := range list {
		if s != name {
			out = append(out, s)
		}
	}
	return out
}

func serverURL(doc *openapi3.T) string {
	if len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return ""
	}
	srv := doc.Servers[0]
	u := srv.URL
	for name, v := range srv.Variables {
		if v != nil {
			u = strings.ReplaceAll(u, "{"+name+"}", v.Default)
		}
	}
	return strings.TrimSuffix(u, "/")
}

func buildServices(doc *openapi3.T, mapper *typeMapper) []*Service {
	if doc.Paths == nil {
		return nil
	}
	byName := make(map[string]*Service)
	usedOps := make(map[string]map[string]bool)

	paths := doc.Paths.Map()
	for _, path := range sortedKeys(paths) {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			svcName := serviceName(op.Tags)
			svc := byName[svcName]
			if svc == nil {
				svc = &Service{Name: svcName}
				byName[svcName] = svc
				usedOps[svcName] = make(map[string]bool)
			}
			o := buildOperation(mapper, method, path, item.Parameters, op)
			o.Name = uniqueName(o.Name, usedOps[svcName])
			svc.Operations = append(svc.Operations, o)
			svc.Imports = mergeImports(svc.Imports, mapper.takeImports())
		}
	}

	services := make([]*Service, 0, len(byName))
	for _, name := range sortedKeys(byName) {
		services = append(services, byName[name])
	}
	return services
}

func serviceName(tags []string) string {
	if len(tags) > 0 {
		if name := nameutil.PascalCase(tags[0]); name != "" {
			return nameutil.Identifier(name + "Service")
		}
	}
	return "DefaultService"
}

func mergeImports(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func operationName(method, path, operationID string) string {
	if operationID != "" {
		if name := nameutil.CamelCase(operationID); name != "" {
			return nameutil.Identifier(name)
		}
	}
	return nameutil.Identifier(nameutil.CamelCase(strings.ToLower(method) + " " + path))
}

func buildOperation(mapper *typeMapper, method, path string, shared openapi3.Parameters, op *openapi3.Operation) *Operation {
	o := &Operation{
		Name:        operationName(method, path, op.OperationID),
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
	}

	usedArgs := make(map[string]bool)
	for _, ref := range mergeParameters(shared, op.Parameters) {
		p := ref.Value
		param := &Parameter{
			Name:        uniqueName(argName(p.Name), usedArgs),
			Prop:        p.Name,
			Type:        mapper.typeOf(p.Schema, 2),
			Required:    p.Required || p.In == openapi3.ParameterInPath,
			Description: p.Description,
		}
		if p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Default != nil {
			param.Default = literal(p.Schema.Value.Default)
		}
		o.Parameters = append(o.Parameters, param)
		switch p.In {
		case openapi3.ParameterInPath:
			o.PathParams = append(o.PathParams, param)
		case openapi3.ParameterInQuery:
			o.Query = append(o.Query, param)
		case openapi3.ParameterInHeader:
			o.Headers = append(o.Headers, param)
		case openapi3.ParameterInCookie:
			o.Cookies = append(o.Cookies, param)
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		addRequestBody(o, mapper, op.RequestBody.Value, usedArgs)
	}

	o.Result, o.Errors = responses(mapper, op.Responses)
	return o
}

// mergeParameters applies operation-level parameters over path-level ones
// with the same name and location.
func mergeParameters(shared, own openapi3.Parameters) []*openapi3.ParameterRef {
	key := func(p *openapi3.Parameter) string { return p.In + ":" + p.Name }
	seen := make(map[string]int)
	var out []*openapi3.ParameterRef
	for _, list := range []openapi3.Parameters{shared, own} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			if i, ok := seen[key(ref.Value)]; ok {
				out[i] = ref
				continue
			}
			seen[key(ref.Value)] = len(out)
			out = append(out, ref)
		}
	}
	return out
}

func argName(name string) string {
	if id := nameutil.CamelCase(name); id != "" {
		return nameutil.Identifier(id)
	}
	return nameutil.Identifier(name)
}

var formMediaTypes = []string{"multipart/form-data", "application/x-www-form-urlencoded"}

func addRequestBody(o *Operation, mapper *typeMapper, body *openapi3.RequestBody, used map[string]bool) {
	for _, mt := range formMediaTypes {
		media := body.Content.Get(mt)
		if media == nil || media.Schema == nil || media.Schema.Value == nil || len(media.Schema.Value.Properties) == 0 || media.Schema.Ref != "" {
			continue
		}
		s := media.Schema.Value
		required := make(map[string]bool)
		for _, r := range s.Required {
			required[r] = true
		}
		o.MediaType = mt
		for _, name := range sortedKeys(s.Properties) {
			prop := s.Properties[name]
			param := &Parameter{
				Name:     uniqueName(argName(name), used),
				Prop:     name,
				Type:     mapper.typeOf(prop, 2),
				Required: required[name],
			}
			if prop.Value != nil {
				param.Description = prop.Value.Description
			}
			o.Parameters = append(o.Parameters, param)
			o.FormData = append(o.FormData, param)
		}
		return
	}

	mt, media := pickMedia(body.Content)
	if media == nil {
		return
	}
	o.MediaType = mt
	o.Body = &Parameter{
		Name:        uniqueName("requestBody", used),
		Prop:        "requestBody",
		Type:        mapper.typeOf(media.Schema, 2),
		Required:    body.Required,
		Description: body.Description,
	}
	o.Parameters = append(o.Parameters, o.Body)
}

// pickMedia prefers JSON content and otherwise takes the first media type.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	if mt := content.Get("application/json"); mt != nil {
		return "application/json", mt
	}
	keys := sortedKeys(content)
	for _, k := range keys {
		if strings.Contains(k, "json") {
			return k, content[k]
		}
	}
	return keys[0], content[keys[0]]
}

// responses derives the result type from 2xx responses (falling back to
// "default") and collects the rest as error descriptions.
func responses(mapper *typeMapper, rs *openapi3.Responses) (string, []ErrorResponse) {
	if rs == nil {
		return "any", nil
	}
	all := rs.Map()

	var results []string
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			results = append(results, t)
		}
	}

	var errs []ErrorResponse
	codes := sortedKeys(all)
	for _, code := range codes {
		status, err := strconv.Atoi(code)
		if err != nil {
			continue
		}
		ref := all[code]
		if status >= 200 && status < 300 {
			add(responseType(mapper, ref))
			continue
		}
		errs = append(errs, ErrorResponse{Code: status, Description: responseDescription(ref)})
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Code < errs[j].Code })

	if len(results) == 0 {
		if def, ok := all["default"]; ok {
			add(responseType(mapper, def))
		}
	}
	if len(results) == 0 {
		return "any", errs
	}
	if len(results) > 1 {
		return strings.Join(results, " | "), errs
	}
	return results[0], errs
}

func responseType(mapper *typeMapper, ref *openapi3.ResponseRef) string {
	if ref == nil || ref.Value == nil {
		return "any"
	}
	_, media := pickMedia(ref.Value.Content)
	if media == nil {
		return "void"
	}
	return wrapUnion(mapper.typeOf(media.Schema, 1))
}

func responseDescription(ref *openapi3.ResponseRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Description == nil {
		return ""
	}
	return *ref.Value.Description
}
