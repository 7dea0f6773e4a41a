/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package api

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/companion/pkg/api AgentClient,Pusher

import (
	"context"

	"github.com/carverauto/companion/pkg/agent"
	"github.com/carverauto/companion/pkg/models"
)

// AgentClient is the agent surface the API drives.
type AgentClient interface {
	GetStatus(ctx context.Context, dev models.Device) (*models.Status, error)
	SetSwitch(ctx context.Context, dev models.Device, on bool) error
	SetSlider(ctx context.Context, dev models.Device, value int) error
	RequestUpdate(ctx context.Context, dev models.Device) error
	ResetSettings(ctx context.Context, dev models.Device) (*models.Status, error)
	FetchAppInfo(ctx context.Context, code string) (*models.AppInfo, error)
	OpenSessions() []agent.Session
}

// Pusher sends the registry to the other surface.
type Pusher interface {
	Push(ctx context.Context) error
}
