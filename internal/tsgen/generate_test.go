package tsgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/thellimist/openapi-client-generator/internal/auth"
	"github.com/thellimist/openapi-client-generator/internal/generator"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func assertContains(t *testing.T, name, content string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(content, want) {
			t.Errorf("%s missing %q\n--- content ---\n%s", name, want, content)
		}
	}
}

func generate(t *testing.T, input string, client generator.HTTPClient) string {
	t.Helper()
	out := t.TempDir()
	opts := generator.Policy(input, out, client)
	if err := New(nil, nil).Generate(context.Background(), opts); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return out
}

func TestGeneratePetstore(t *testing.T) {
	out := generate(t, filepath.Join("testdata", "petstore.yaml"), generator.HTTPClientFetch)

	for _, rel := range []string{
		"index.ts",
		"core/ApiError.ts",
		"core/ApiRequestOptions.ts",
		"core/ApiResult.ts",
		"core/CancelablePromise.ts",
		"core/OpenAPI.ts",
		"core/request.ts",
		"models/Pet.ts",
		"models/NewPet.ts",
		"models/Status.ts",
		"models/Error.ts",
		"schemas/$Pet.ts",
		"schemas/$Status.ts",
		"services/PetsService.ts",
		"services/DefaultService.ts",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}

	assertContains(t, "models/Pet.ts", readFile(t, filepath.Join(out, "models", "Pet.ts")),
		"/* generated by openapi-client-generator -- do not edit */",
		"import type { Status } from './Status';",
		"export type Pet = {\n",
		"  id: number;\n",
		"  name: string;\n",
		"  status?: Status;\n",
		"  tag?: string | null;\n",
		"   * Display name\n",
	)
	assertContains(t, "models/Status.ts", readFile(t, filepath.Join(out, "models", "Status.ts")),
		"export type Status = 'available' | 'pending' | 'sold';",
	)
	assertContains(t, "models/NewPet.ts", readFile(t, filepath.Join(out, "models", "NewPet.ts")),
		"import type { Pet } from './Pet';",
		"export type NewPet = (Pet & {",
		"owner?: string;",
	)
	assertContains(t, "schemas/$Pet.ts", readFile(t, filepath.Join(out, "schemas", "$Pet.ts")),
		"export const $Pet = {",
		"} as const;",
		`"required": [`,
	)

	service := readFile(t, filepath.Join(out, "services", "PetsService.ts"))
	assertContains(t, "services/PetsService.ts", service,
		"import type { NewPet } from '../models/NewPet';",
		"import type { Pet } from '../models/Pet';",
		"import { request as __request } from '../core/request';",
		"export class PetsService {",
		"public static listPets({\n    limit = 20,\n  }: {",
		"limit?: number,",
		"}): CancelablePromise<Array<Pet>> {",
		"method: 'GET',",
		"url: '/pets',",
		"query: {\n        'limit': limit,\n      },",
		"public static createPet({",
		"requestBody: NewPet,",
		"body: requestBody,",
		"mediaType: 'application/json',",
		"400: 'Invalid pet',",
		"public static showPetById({",
		"'petId': petId,",
		"404: 'Pet not found',",
		"@returns Pet",
		"@throws ApiError",
	)

	assertContains(t, "services/DefaultService.ts", readFile(t, filepath.Join(out, "services", "DefaultService.ts")),
		"public static deletePet({",
		"CancelablePromise<void>",
		"method: 'DELETE',",
	)

	assertContains(t, "core/OpenAPI.ts", readFile(t, filepath.Join(out, "core", "OpenAPI.ts")),
		"BASE: 'https://api.example.com/v1',",
		"VERSION: '1.2.0',",
	)
	assertContains(t, "core/request.ts", readFile(t, filepath.Join(out, "core", "request.ts")),
		"return await fetch(url, request);",
	)

	index := readFile(t, filepath.Join(out, "index.ts"))
	assertContains(t, "index.ts", index,
		"export { ApiError } from './core/ApiError';",
		"export type { OpenAPIConfig } from './core/OpenAPI';",
		"export type { Pet } from './models/Pet';",
		"export { $Pet } from './schemas/$Pet';",
		"export { PetsService } from './services/PetsService';",
		"export { DefaultService } from './services/DefaultService';",
	)
}

func TestGenerateAxios(t *testing.T) {
	out := generate(t, filepath.Join("testdata", "petstore.yaml"), generator.HTTPClientAxios)

	request := readFile(t, filepath.Join(out, "core", "request.ts"))
	assertContains(t, "core/request.ts", request,
		"import axios from 'axios';",
		"axiosClient.request(requestConfig)",
	)
	if strings.Contains(request, "await fetch(") {
		t.Error("axios request.ts should not call fetch")
	}
}

func TestGenerateIndent(t *testing.T) {
	tests := []struct {
		indent generator.Indent
		want   string
	}{
		{generator.Indent2, "\n  id: number;"},
		{generator.Indent4, "\n    id: number;"},
		{generator.IndentTab, "\n\tid: number;"},
	}
	for _, tc := range tests {
		t.Run(string(tc.indent), func(t *testing.T) {
			out := t.TempDir()
			opts := generator.Policy(filepath.Join("testdata", "petstore.yaml"), out, generator.HTTPClientFetch)
			opts.Indent = tc.indent
			if err := New(nil, nil).Generate(context.Background(), opts); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			pet := readFile(t, filepath.Join(out, "models", "Pet.ts"))
			if !strings.Contains(pet, tc.want) {
				t.Errorf("Pet.ts missing %q:\n%s", tc.want, pet)
			}
			if tc.indent != generator.IndentTab {
				for _, line := range strings.Split(readFile(t, filepath.Join(out, "services", "PetsService.ts")), "\n") {
					if strings.HasPrefix(line, "\t") {
						t.Fatalf("tab-indented line with indent %s: %q", tc.indent, line)
					}
				}
			}
		})
	}
}

func TestGeneratePositionalParameters(t *testing.T) {
	out := t.TempDir()
	opts := generator.Policy(filepath.Join("testdata", "petstore.yaml"), out, generator.HTTPClientFetch)
	opts.UseOptions = false
	if err := New(nil, nil).Generate(context.Background(), opts); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertContains(t, "services/PetsService.ts", readFile(t, filepath.Join(out, "services", "PetsService.ts")),
		"public static listPets(\n    limit: number = 20,\n  ): CancelablePromise<Array<Pet>> {",
		"public static showPetById(\n    petId: string,\n  ): CancelablePromise<Pet> {",
	)
}

func TestGenerateEnums(t *testing.T) {
	out := t.TempDir()
	opts := generator.Policy(filepath.Join("testdata", "petstore.yaml"), out, generator.HTTPClientFetch)
	opts.UseUnionTypes = false
	if err := New(nil, nil).Generate(context.Background(), opts); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	assertContains(t, "models/Status.ts", readFile(t, filepath.Join(out, "models", "Status.ts")),
		"export enum Status {\n  AVAILABLE = 'available',\n  PENDING = 'pending',\n  SOLD = 'sold',\n}",
	)
	assertContains(t, "index.ts", readFile(t, filepath.Join(out, "index.ts")),
		"export { Status } from './models/Status';",
	)
}

func TestGenerateSwagger2(t *testing.T) {
	out := generate(t, filepath.Join("testdata", "legacy.json"), generator.HTTPClientFetch)

	assertContains(t, "services/UsersService.ts", readFile(t, filepath.Join(out, "services", "UsersService.ts")),
		"public static getUser({",
		"CancelablePromise<User>",
		"'id': id,",
	)
	assertContains(t, "models/User.ts", readFile(t, filepath.Join(out, "models", "User.ts")),
		"export type User = {",
		"email?: string;",
	)
	assertContains(t, "core/OpenAPI.ts", readFile(t, filepath.Join(out, "core", "OpenAPI.ts")),
		"legacy.example.com",
	)
}

func TestGenerateRemote(t *testing.T) {
	spec, err := os.ReadFile(filepath.Join("testdata", "petstore.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(spec)
	}))
	defer srv.Close()

	out := generate(t, srv.URL+"/openapi.yaml", generator.HTTPClientFetch)
	if _, err := os.Stat(filepath.Join(out, "services", "PetsService.ts")); err != nil {
		t.Errorf("expected PetsService.ts: %v", err)
	}

	err = New(srv.Client(), nil).Generate(context.Background(),
		generator.Policy(srv.URL+"/missing.yaml", t.TempDir(), generator.HTTPClientFetch))
	if err == nil || !strings.Contains(err.Error(), "http status 404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing file", filepath.Join("testdata", "does-not-exist.yaml"), "does-not-exist.yaml"},
		{"unsupported document", filepath.Join("testdata", "unsupported.yaml"), "unsupported OpenAPI version"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "client")
			if err := os.MkdirAll(out, 0755); err != nil {
				t.Fatal(err)
			}
			err := New(nil, nil).Generate(context.Background(), generator.Policy(tc.input, out, generator.HTTPClientFetch))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tc.wantErr)
			}
			entries, _ := os.ReadDir(out)
			if len(entries) != 0 {
				t.Errorf("expected empty output after failure, got %d entries", len(entries))
			}
		})
	}
}

func TestGenerateReplacesPreviousOutput(t *testing.T) {
	out := t.TempDir()
	stale := filepath.Join(out, "models", "Stale.ts")
	keep := filepath.Join(out, "README.md")
	if err := os.MkdirAll(filepath.Dir(stale), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("export type Stale = string;\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(keep, []byte("# notes\n"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := generator.Policy(filepath.Join("testdata", "petstore.yaml"), out, generator.HTTPClientFetch)
	for i := 0; i < 2; i++ {
		if err := New(nil, nil).Generate(context.Background(), opts); err != nil {
			t.Fatalf("Generate run %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale model should be removed, stat err = %v", err)
	}
	if got := readFile(t, keep); got != "# notes\n" {
		t.Errorf("unrelated file changed: %q", got)
	}
}

func TestGenerateInvalidOptions(t *testing.T) {
	opts := generator.Policy(filepath.Join("testdata", "petstore.yaml"), t.TempDir(), "xhr")
	if err := New(nil, nil).Generate(context.Background(), opts); err == nil {
		t.Fatal("expected error for unsupported http client")
	}
}

func TestLoadRedirectDropsCredential(t *testing.T) {
	spec, err := os.ReadFile(filepath.Join("testdata", "petstore.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var mirrorAuth string
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mirrorAuth = r.Header.Get("Authorization")
		w.Write(spec)
	}))
	defer mirror.Close()
	var originAuth string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originAuth = r.Header.Get("Authorization")
		http.Redirect(w, r, mirror.URL+"/openapi.yaml", http.StatusFound)
	}))
	defer origin.Close()

	client := auth.NewHTTPClient(&auth.BearerTokenProvider{Token: "s3cret"}, origin.URL, nil, 0)
	if _, err := Load(context.Background(), client, origin.URL+"/openapi.yaml"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if originAuth != "Bearer s3cret" {
		t.Errorf("origin Authorization = %q", originAuth)
	}
	if mirrorAuth != "" {
		t.Errorf("redirect target received Authorization %q", mirrorAuth)
	}
}

func TestRefReader(t *testing.T) {
	local := filepath.Join(t.TempDir(), "secret.yaml")
	if err := os.WriteFile(local, []byte("type: string\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fileURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(local)}
	loader := openapi3.NewLoader()

	if _, err := refReader(http.DefaultClient, true)(loader, fileURL); err == nil {
		t.Error("remote document was allowed to read a local file")
	}
	data, err := refReader(http.DefaultClient, false)(loader, fileURL)
	if err != nil || string(data) != "type: string\n" {
		t.Errorf("local document read = %q, %v", data, err)
	}
}

func TestLoadRemoteRejectsFileRef(t *testing.T) {
	local := filepath.Join(t.TempDir(), "pet.yaml")
	if err := os.WriteFile(local, []byte("type: object\n"), 0644); err != nil {
		t.Fatal(err)
	}
	doc := `openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Pet:
      $ref: 'file://` + filepath.ToSlash(local) + `'
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), srv.Client(), srv.URL+"/openapi.yaml"); err == nil {
		t.Fatal("remote document resolved a file:// reference")
	}
}
