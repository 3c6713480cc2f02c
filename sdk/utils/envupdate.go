// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"

	"github.com/spf13/viper"
)

// IniPath is the INI file in use: $DOCANON_INI, else ~/.docanon.ini.
func IniPath() string {
	return getIniPath()
}

// SaveEnvironment persists the current Viper values into the section of the
// active environment and bumps its timestamp.
func SaveEnvironment() error {
	env := viper.GetString(CurrentEnvironment)
	if env == "" {
		env = resolveEnvName()
	}
	if err := UpdateIniFromStruct(getIniPath(), env); err != nil {
		return fmt.Errorf("failed to save ini: %w", err)
	}
	infof("Updated section [%s] in %s", env, getIniPath())
	return nil
}
