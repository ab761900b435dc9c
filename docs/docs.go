// Package docs registra a especificação OpenAPI da estação GoCaixa para o /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/caixa": {
            "get": {"tags": ["caixa"], "summary": "Estado da sessão", "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionView"}}}}
        },
        "/caixa/scan": {
            "post": {"tags": ["caixa"], "summary": "Registra uma leitura", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "leitura", "required": true, "schema": {"$ref": "#/definitions/caixa.scanRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ScanResult"}},
                    "300": {"description": "Mais de uma variação encontrada", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "404": {"description": "Código não encontrado", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Estoque insuficiente", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "502": {"description": "Falha de comunicação com o backend", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }}
        },
        "/caixa/lote": {
            "post": {"tags": ["caixa"], "summary": "Colagem em lote", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "colagem", "required": true, "schema": {"$ref": "#/definitions/caixa.bulkRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.BulkResult"}}}}
        },
        "/caixa/buscar": {
            "get": {"tags": ["caixa"], "summary": "Busca textual", "produces": ["application/json"],
                "parameters": [{"in": "query", "name": "q", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Variation"}}}}}
        },
        "/caixa/candidatos/{id}": {
            "post": {"tags": ["caixa"], "summary": "Adiciona um candidato da última busca", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ScanResult"}}}}
        },
        "/caixa/itens/{id}": {
            "patch": {"tags": ["caixa"], "summary": "Ajusta a quantidade de uma linha", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SessionView"}}}},
            "delete": {"tags": ["caixa"], "summary": "Remove uma linha",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/caixa/desfazer": {"post": {"tags": ["caixa"], "summary": "Desfaz a última leitura", "responses": {"200": {"description": "OK"}}}},
        "/caixa/limpar": {"post": {"tags": ["caixa"], "summary": "Limpa a sessão", "responses": {"200": {"description": "OK"}}}},
        "/caixa/finalizar": {
            "post": {"tags": ["caixa"], "summary": "Finaliza o lote", "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Lote vazio ou depósitos inválidos", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "409": {"description": "Envio em andamento", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}},
                    "422": {"description": "Recusado pelo backend", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}
                }}
        },
        "/caixa/configuracao": {
            "put": {"tags": ["caixa"], "summary": "Altera a configuração da sessão", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Configuração inválida", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/caixa/atalhos/{tecla}": {
            "post": {"tags": ["caixa"], "summary": "Executa uma tecla de atalho", "produces": ["application/json"],
                "parameters": [{"in": "path", "name": "tecla", "type": "string", "required": true}, {"in": "query", "name": "campoTexto", "type": "boolean"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Tecla sem atalho", "schema": {"$ref": "#/definitions/domain.ErrorResponse"}}}}
        },
        "/caixa/exportar": {
            "get": {"tags": ["caixa"], "summary": "Planilha de conferência", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "responses": {"200": {"description": "OK", "schema": {"type": "file"}}}}
        }
    },
    "definitions": {
        "caixa.scanRequest": {"type": "object", "properties": {"codigo": {"type": "string", "example": "5*ABC123"}, "origem": {"type": "string", "example": "leitor"}}},
        "caixa.bulkRequest": {"type": "object", "properties": {"texto": {"type": "string"}}},
        "domain.Variation": {"type": "object", "properties": {
            "variacaoId": {"type": "string"}, "codigo": {"type": "string"}, "referencia": {"type": "string"},
            "nome": {"type": "string"}, "estoque": {"type": "integer"}}},
        "domain.LineItem": {"type": "object", "properties": {
            "variacaoId": {"type": "string"}, "codigo": {"type": "string"}, "referencia": {"type": "string"},
            "nome": {"type": "string"}, "quantidade": {"type": "integer"}, "estoque": {"type": "integer"}}},
        "domain.ScanResult": {"type": "object", "properties": {
            "ignorado": {"type": "boolean"}, "item": {"$ref": "#/definitions/domain.LineItem"},
            "adicionado": {"type": "integer"}, "quantidadeLinha": {"type": "integer"}}},
        "domain.BulkResult": {"type": "object", "properties": {
            "adicionados": {"type": "array", "items": {"$ref": "#/definitions/domain.ScanResult"}},
            "falhas": {"type": "array", "items": {"type": "object"}}}},
        "domain.SessionView": {"type": "object", "properties": {
            "sessaoId": {"type": "string"}, "estado": {"type": "string"},
            "itens": {"type": "array", "items": {"$ref": "#/definitions/domain.LineItem"}},
            "linhas": {"type": "integer"}, "totalUnidades": {"type": "integer"},
            "ultimaLeitura": {"type": "string"}, "desfazerDisponivel": {"type": "integer"}}},
        "domain.ErrorResponse": {"type": "object", "properties": {
            "code": {"type": "integer", "example": 422}, "category": {"type": "string", "example": "INSUFFICIENT_STOCK"},
            "message": {"type": "string"}, "mensagens": {"type": "array", "items": {"type": "string"}},
            "candidatos": {"type": "array", "items": {"$ref": "#/definitions/domain.Variation"}}}}
    }
}`

// SwaggerInfo guarda as informações exportadas da especificação.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "GoCaixa API",
	Description:      "Estação de leitura de estoque: leituras, lote pendente e finalização de movimentações.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(swag.Name, SwaggerInfo)
}
